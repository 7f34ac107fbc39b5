package web

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalImageStorage", func() {
	var (
		tmpDir  string
		storage ImageStorage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalImageStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		It("should write the image under the base path", func() {
			saved, err := storage.Save("bill.jpg", []byte("image bytes"))
			Expect(err).NotTo(HaveOccurred())
			Expect(saved).To(Equal("bill.jpg"))
			Expect(filepath.Join(tmpDir, "bill.jpg")).To(BeAnExistingFile())
		})
	})

	Describe("Get", func() {
		When("the image exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("bill.jpg", []byte("image bytes"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return its contents", func() {
				data, err := storage.Get("bill.jpg")
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal([]byte("image bytes")))
			})
		})

		When("the image does not exist", func() {
			It("should return an error", func() {
				_, err := storage.Get("missing.jpg")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		It("should remove a saved image", func() {
			_, err := storage.Save("bill.jpg", []byte("image bytes"))
			Expect(err).NotTo(HaveOccurred())

			Expect(storage.Delete("bill.jpg")).To(Succeed())
			Expect(filepath.Join(tmpDir, "bill.jpg")).NotTo(BeAnExistingFile())
		})

		It("should return an error for a missing image", func() {
			Expect(storage.Delete("missing.jpg")).NotTo(Succeed())
		})
	})
})

var _ = Describe("sanitizeFilename", func() {
	It("should keep a simple filename", func() {
		Expect(sanitizeFilename("bill.jpg")).To(Equal("bill.jpg"))
	})

	It("should strip special characters", func() {
		Expect(sanitizeFilename("IMG_2024!@#.jpg")).To(Equal("IMG_2024.jpg"))
	})

	It("should collapse whitespace", func() {
		Expect(sanitizeFilename("my   bill   photo.png")).To(Equal("my bill photo.png"))
	})

	It("should fall back to a default base name", func() {
		Expect(sanitizeFilename("!!!.jpg")).To(Equal("bill.jpg"))
	})
})
