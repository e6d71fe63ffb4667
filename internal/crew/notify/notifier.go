// Package notify tells crew members about new assignments over SNS and mails weekly balancing
// reports over SES.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/crew/balancing"
	"crew-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const EventCrewAssigned = "crew.assigned"

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Config struct {
	TopicARN         string
	FromEmail        string
	ReportRecipients []string
}

// Notifier sends nothing over a channel whose client is nil.
type Notifier struct {
	sns    SNSService
	ses    SESService
	config Config
}

func New(snsClient SNSService, sesClient SESService, cfg Config) *Notifier {
	return &Notifier{sns: snsClient, ses: sesClient, config: cfg}
}

type AssignmentEvent struct {
	EventID      string    `json:"eventId"`
	EventType    string    `json:"eventType"`
	AssignmentID string    `json:"assignmentId"`
	JobID        string    `json:"jobId"`
	CrewIDs      []string  `json:"crewIds"`
	LeadID       string    `json:"leadId"`
	Method       string    `json:"method"`
	AssignedDate string    `json:"assignedDate"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// AssignmentCreated publishes the assignment to the crew topic. Subscribers filter on crewIds.
func (n *Notifier) AssignmentCreated(ctx context.Context, a *assignment.CrewAssignment) error {
	if n == nil || n.sns == nil {
		return nil
	}

	event := AssignmentEvent{
		EventID:      uuid.NewString(),
		EventType:    EventCrewAssigned,
		AssignmentID: a.ID,
		JobID:        a.JobID,
		CrewIDs:      a.CrewIDs,
		LeadID:       a.LeadID,
		Method:       string(a.Method),
		AssignedDate: a.AssignedDate.Format(models.DateLayout),
		OccurredAt:   time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode assignment event: %w", err)
	}

	_, err = n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(fmt.Sprintf("Crew assigned to job %s", a.JobID)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(EventCrewAssigned)},
			"jobId":     {DataType: aws.String("String"), StringValue: aws.String(a.JobID)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish assignment %s: %w", a.ID, err)
	}
	return nil
}

// BalanceReport mails the week's recommendations to the configured recipients.
func (n *Notifier) BalanceReport(ctx context.Context, result *balancing.Result) error {
	if n == nil || n.ses == nil || len(n.config.ReportRecipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Crew workload report, week of %s", result.WeekStart.Format(models.DateLayout))
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: n.config.ReportRecipients,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(renderReport(result))},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send balance report: %w", err)
	}
	return nil
}

func renderReport(result *balancing.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week starting %s\n", result.WeekStart.Format(models.DateLayout))
	fmt.Fprintf(&b, "Average jobs per crew member: %.2f\n", result.AverageJobsPerCrew)
	fmt.Fprintf(&b, "Overloaded: %d\n", result.OverloadedCount)
	fmt.Fprintf(&b, "Underutilized: %d\n\n", result.UnderutilizedCount)
	if len(result.CrewRecommendations) == 0 {
		b.WriteString("No workload recorded this week.\n")
		return b.String()
	}
	for _, rec := range result.CrewRecommendations {
		fmt.Fprintf(&b, "%s\t%d jobs\t%.1f h\t%s\n", rec.CrewID, rec.TotalJobs, rec.HoursWorked, rec.Recommendation)
	}
	return b.String()
}
