package email

import (
	"context"
	"fmt"

	"github.com/dkrylova/aftersale/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ApplicationEvent) error {
	if event.ContactEmail == "" {
		return nil
	}
	fmt.Printf("send email to %s: application %s (%s) is now %s\n", event.ContactEmail, event.AppNo, event.Kind, event.Status)
	return nil
}
