package mailer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coparently/coparently/internal/mailer"
)

var _ = Describe("Client", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	It("delivers a queued mail to the API", func() {
		type delivery struct {
			payload map[string]string
			auth    string
		}
		received := make(chan delivery, 1)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&payload)).To(Succeed())
			received <- delivery{payload: payload, auth: r.Header.Get("Authorization")}
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client := mailer.NewClient(mailer.Config{
			APIURL:      server.URL,
			APIKey:      "test-api-key",
			FromAddress: "noreply@coparently.example",
		}, logger)
		defer client.Shutdown()

		err := client.Send(context.Background(), "jordan@example.com", "Expense shared", "An expense was shared with you")
		Expect(err).NotTo(HaveOccurred())

		var got delivery
		Eventually(received, 2*time.Second).Should(Receive(&got))
		Expect(got.payload["from"]).To(Equal("noreply@coparently.example"))
		Expect(got.payload["to"]).To(Equal("jordan@example.com"))
		Expect(got.payload["subject"]).To(Equal("Expense shared"))
		Expect(got.auth).To(Equal("Bearer test-api-key"))
	})

	It("rejects a send without a recipient", func() {
		client := mailer.NewClient(mailer.Config{APIURL: "http://localhost:0"}, logger)
		defer client.Shutdown()

		err := client.Send(context.Background(), "", "subject", "body")
		Expect(err).To(HaveOccurred())
	})

	It("shuts down cleanly right after startup", func() {
		done := make(chan struct{})

		client := mailer.NewClient(mailer.Config{APIURL: "http://localhost:0"}, logger)
		go func() {
			client.Shutdown()
			close(done)
		}()

		Eventually(done, 2*time.Second).Should(BeClosed())
	})
})
