package messaging_test

import (
	"context"
	"log/slog"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coparently/coparently/internal"
	messageDatamodel "github.com/coparently/coparently/internal/core/datamodel/message"
	"github.com/coparently/coparently/internal/expense"
	"github.com/coparently/coparently/internal/messaging"
)

type mockMessageRepository struct {
	messages    []*messageDatamodel.Message
	insertError error
}

func (m *mockMessageRepository) Insert(ctx context.Context, msg *messageDatamodel.Message) error {
	if m.insertError != nil {
		return m.insertError
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepository) ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]*messageDatamodel.Message, error) {
	var result []*messageDatamodel.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			result = append(result, msg)
		}
	}
	return result, nil
}

type staticResolver struct {
	links map[string]string
}

func (r *staticResolver) CoParentOf(ctx context.Context, parentID string) (string, error) {
	coParent, exists := r.links[parentID]
	if !exists {
		return "", internal.ErrCoParentNotLinked
	}
	return coParent, nil
}

var _ = Describe("Bridge", func() {
	const (
		payerID    = "parent-a"
		coParentID = "parent-b"
	)

	var (
		bridge *messaging.Bridge
		repo   *mockMessageRepository
	)

	newExpense := func() *expense.Expense {
		return &expense.Expense{
			ID:          "exp-1",
			Description: "Ballet shoes",
			AmountCents: 4599,
			PaidBy:      payerID,
			Status:      expense.StatusPending,
		}
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = &mockMessageRepository{}
		resolver := &staticResolver{links: map[string]string{payerID: coParentID, coParentID: payerID}}
		bridge = messaging.NewBridge(repo, resolver, logger)
	})

	Describe("NotifyCounterpart", func() {
		It("sends a dispute notice from the co-parent to the payer", func() {
			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(coParentID), expense.NoticeDispute, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.messages).To(HaveLen(1))
			Expect(repo.messages[0].SenderID).To(Equal(coParentID))
			Expect(repo.messages[0].ReceiverID).To(Equal(payerID))
		})

		It("sends a share notice from the payer to the co-parent", func() {
			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(payerID), expense.NoticeShare, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.messages).To(HaveLen(1))
			Expect(repo.messages[0].SenderID).To(Equal(payerID))
			Expect(repo.messages[0].ReceiverID).To(Equal(coParentID))
		})

		It("skips a self-dispute as success", func() {
			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(payerID), expense.NoticeDispute, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.messages).To(BeEmpty())
		})

		It("routes a system dispute to the payer", func() {
			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.SystemActor(), expense.NoticeDispute, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.messages).To(HaveLen(1))
			Expect(repo.messages[0].ReceiverID).To(Equal(payerID))
		})

		It("fills in a default text with description and formatted amount", func() {
			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(coParentID), expense.NoticeDispute, "")

			Expect(err).ToNot(HaveOccurred())
			text := repo.messages[0].Text
			Expect(strings.Contains(text, "Ballet shoes")).To(BeTrue())
			Expect(strings.Contains(text, "45.99")).To(BeTrue())
		})

		It("keeps a caller-supplied text as is", func() {
			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(coParentID), expense.NoticeDispute, "Why so expensive?")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.messages[0].Text).To(Equal("Why so expensive?"))
		})

		It("attaches the expense reference to the message", func() {
			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(coParentID), expense.NoticeDispute, "")

			Expect(err).ToNot(HaveOccurred())
			msg := repo.messages[0]
			Expect(*msg.AttachmentType).To(Equal(messageDatamodel.AttachmentTypeExpenseReference))
			Expect(*msg.AttachmentRef).To(Equal("exp-1"))
		})

		It("reports a repository failure to the caller", func() {
			repo.insertError = internal.NewDependencyError("message store down", internal.ErrCodeMessageSendFailed, nil)

			err := bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(coParentID), expense.NoticeDispute, "")

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListConversation", func() {
		It("returns messages in both directions", func() {
			Expect(bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(coParentID), expense.NoticeDispute, "first")).To(Succeed())
			Expect(bridge.NotifyCounterpart(context.Background(), newExpense(),
				expense.UserActor(payerID), expense.NoticeShare, "second")).To(Succeed())

			msgs, err := bridge.ListConversation(context.Background(), payerID, 0, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
		})
	})
})
