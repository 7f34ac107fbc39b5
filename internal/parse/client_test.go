package parse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"billsplit/internal/bill"
)

func TestParse(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Parse Suite")
}

var _ = Describe("Client", func() {
	var (
		server *ghttp.Server
		client *Client
		result *Result
		err    error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		client = NewClient(server.URL()+"/api/parse-bill", 5*time.Second)
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		result, err = client.ParseBill(context.Background(), "bill.jpg", []byte("image-bytes"), "image/jpeg")
	})

	When("the collaborator returns items and a total", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/parse-bill"),
				func(w http.ResponseWriter, r *http.Request) {
					f, header, formErr := r.FormFile("file")
					Expect(formErr).NotTo(HaveOccurred())
					defer f.Close()
					Expect(header.Filename).To(Equal("bill.jpg"))
					payload, readErr := io.ReadAll(f)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(payload).To(Equal([]byte("image-bytes")))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"items": []map[string]string{
						{"name": "Coffee", "price": "3.50"},
					},
					"total": "3.50",
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the extracted items", func() {
			Expect(result.Items).To(Equal([]bill.LineItem{{Name: "Coffee", Price: "3.50"}}))
		})

		It("should return the reported total", func() {
			Expect(result.Total).To(Equal("3.50"))
		})
	})

	When("the collaborator reports the total as a number", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK,
				`{"items":[{"name":"Coffee","price":"3.50"}],"total":3.5}`,
				http.Header{"Content-Type": []string{"application/json"}},
			))
		})

		It("should coerce the total to a string", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total).To(Equal("3.5"))
		})
	})

	When("the collaborator omits the total", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK,
				`{"items":[{"name":"Coffee","price":"3.50"}]}`,
				http.Header{"Content-Type": []string{"application/json"}},
			))
		})

		It("should leave the total empty", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total).To(Equal(""))
		})
	})

	When("the collaborator returns an error body", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusBadRequest, map[string]string{
				"error": "could not read the image",
			}))
		})

		It("should return a ParseError carrying the server message", func() {
			var parseErr *ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Message).To(Equal("could not read the image"))
		})
	})

	When("the collaborator fails without a message", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "boom"))
		})

		It("should return a ParseError with the generic fallback", func() {
			var parseErr *ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Message).To(Equal(fallbackMessage))
		})
	})

	When("the collaborator returns an unexpected success shape", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK,
				`{"rows":[]}`,
				http.Header{"Content-Type": []string{"application/json"}},
			))
		})

		It("should treat it as a parse failure", func() {
			var parseErr *ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
		})
	})

	When("the collaborator is unreachable", func() {
		BeforeEach(func() {
			server.Close()
		})

		It("should return a TransportError", func() {
			var transportErr *TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
		})
	})
})
