package sink

import (
	"context"
	"errors"

	"analytics-service/models"
	aws_pkg "analytics-service/pkg/aws"
)

// SNSSink publishes each event to an SNS topic. The emit tag is also sent as
// a message attribute for subscription filters.
type SNSSink struct {
	publisher aws_pkg.SNSPublisher
	topicArn  string
}

func NewSNSSink(publisher aws_pkg.SNSPublisher, topicArn string) *SNSSink {
	return &SNSSink{publisher: publisher, topicArn: topicArn}
}

func (s *SNSSink) Emit(ctx context.Context, visitorID string, events ...models.NormalizedEvent) error {
	var errs []error
	for _, ev := range events {
		ce, data, err := encode(visitorID, ev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		attrs := map[string]string{"type": ce.Type()}
		if ev.EmitTag != "" {
			attrs["emit_tag"] = ev.EmitTag
		}
		if err := s.publisher.Publish(ctx, s.topicArn, data, attrs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *SNSSink) Close() error { return nil }
