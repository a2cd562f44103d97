package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
)

const notifySignature = "-AP Housing Corporation"

// Gateway dispatches messages to the outside world. Implementations must not
// be relied on for business correctness: every caller treats dispatch as
// best-effort except OTP delivery, which reports failure so the challenge
// can be invalidated.
type Gateway interface {
	SendSMS(phone, message string) error
	SendEmail(to, subject, body string) error
}

// SMSGatewayConfig configures the HTTP SMS/email gateway
type SMSGatewayConfig struct {
	APIURL   string
	APIKey   string
	SenderID string
	Enabled  bool
}

// HTTPGateway sends SMS through a form-POST SMS API and logs email bodies
// for the SMTP relay to pick up. When disabled (no API key configured) it
// logs messages instead of sending, which is the dev-mode behavior.
type HTTPGateway struct {
	cfg    SMSGatewayConfig
	client *http.Client
}

// NewHTTPGateway creates a gateway from config
func NewHTTPGateway(cfg SMSGatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendSMS dispatches one SMS
func (g *HTTPGateway) SendSMS(phone, message string) error {
	if !g.cfg.Enabled {
		log.Printf("📱 [SMS disabled] to %s: %s", phone, message)
		return nil
	}

	data := url.Values{}
	data.Set("apikey", g.cfg.APIKey)
	data.Set("numbers", phone)
	data.Set("sender", g.cfg.SenderID)
	data.Set("message", message)

	resp, err := g.client.Post(g.cfg.APIURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// SendEmail dispatches one email. The SMS gateway carries no email channel,
// so enabled mode reports not-configured and the best-effort callers audit
// the failure; an SMTP relay implementation replaces this gateway method.
func (g *HTTPGateway) SendEmail(to, subject, _ string) error {
	if !g.cfg.Enabled {
		log.Printf("📧 [Email disabled] to %s: %s", to, subject)
		return nil
	}
	return fmt.Errorf("email relay not configured for %s", to)
}

// NotificationService builds and dispatches applicant-facing messages.
// All methods except SendOTP are fire-and-forget; dispatch failures are
// audit-logged but never fail the triggering operation.
type NotificationService struct {
	gateway Gateway
	audit   *AuditService
}

// NewNotificationService creates a new notification service
func NewNotificationService(gateway Gateway, audit *AuditService) *NotificationService {
	return &NotificationService{gateway: gateway, audit: audit}
}

// SendOTP delivers a one-time code. This is the only notification whose
// failure matters to the caller: the OTP service rolls the challenge to
// failed when delivery fails.
func (s *NotificationService) SendOTP(phone, code string, expiryMinutes int) error {
	message := fmt.Sprintf(
		"Your OTP for housing application is: %s. Valid for %d minutes. Do not share with anyone. %s",
		code, expiryMinutes, notifySignature)
	return s.gateway.SendSMS(phone, message)
}

// NotifyRegistrationSubmitted confirms a submitted registration
func (s *NotificationService) NotifyRegistrationSubmitted(phone, email, name, applicationID string) {
	sms := fmt.Sprintf("Your housing registration %s has been submitted. Please complete payment to proceed. %s",
		applicationID, notifySignature)
	s.send(phone, sms)

	body := fmt.Sprintf(`Dear %s,

Your housing registration has been successfully submitted.

Application ID: %s
Status: Pending Payment

Please complete the payment to proceed with your application.

Thank you,
Andhra Pradesh Housing Corporation`, name, applicationID)
	s.email(email, "Housing Registration Submitted - "+applicationID, body)
}

// NotifyPaymentReceived confirms a processed fee payment
func (s *NotificationService) NotifyPaymentReceived(phone, email, name, applicationID, transactionRef string, amount float64) {
	sms := fmt.Sprintf("Payment successful! TXN: %s, Amount: ₹%.2f for application %s. Under review now. %s",
		transactionRef, amount, applicationID, notifySignature)
	s.send(phone, sms)

	body := fmt.Sprintf(`Dear %s,

Your payment has been successfully processed.

Transaction ID: %s
Amount: ₹%.2f
Application ID: %s

Your application is now under review.

Thank you,
Andhra Pradesh Housing Corporation`, name, transactionRef, amount, applicationID)
	s.email(email, "Payment Successful - "+applicationID, body)
}

// NotifyApproved delivers the beneficiary unique ID after approval
func (s *NotificationService) NotifyApproved(phone, email, name, uniqueID, applicationID string) {
	sms := fmt.Sprintf("Dear %s, your housing application has been APPROVED! Your Unique ID is: %s. You can now add your bank details. %s",
		name, uniqueID, notifySignature)
	s.send(phone, sms)

	body := fmt.Sprintf(`Dear %s,

Congratulations! Your housing application has been APPROVED.

Application ID: %s
Unique ID: %s

Next Steps:
1. Visit our portal and check your application status
2. Add your bank details using your Unique ID
3. Wait for subsidy transfer notification

Thank you,
Andhra Pradesh Housing Corporation`, name, applicationID, uniqueID)
	s.email(email, "Housing Application Approved - "+applicationID, body)
}

// NotifyRejected informs the applicant of a rejection and its reason
func (s *NotificationService) NotifyRejected(phone, email, name, applicationID, reason string) {
	sms := fmt.Sprintf("Dear %s, your housing application %s has been rejected. Reason: %s. %s",
		name, applicationID, reason, notifySignature)
	s.send(phone, sms)

	body := fmt.Sprintf(`Dear %s,

We regret to inform you that your housing application has been rejected.

Application ID: %s
Reason: %s

You may contact your district housing office for clarification.

Thank you,
Andhra Pradesh Housing Corporation`, name, applicationID, reason)
	s.email(email, "Housing Application Update - "+applicationID, body)
}

// NotifyPendingReview reminds a staff member of applications awaiting review
func (s *NotificationService) NotifyPendingReview(email string, count int64) {
	body := fmt.Sprintf(`Dear Admin,

There are %d housing applications awaiting review.

Please log in to the portal and process them.

Thank you,
Andhra Pradesh Housing Corporation`, count)
	s.email(email, fmt.Sprintf("Pending Review Reminder - %d applications", count), body)
}

func (s *NotificationService) send(phone, message string) {
	if err := s.gateway.SendSMS(phone, message); err != nil {
		log.Printf("⚠️ SMS dispatch failed for %s: %v", phone, err)
		s.audit.Record(context.Background(), nil, models.ActorSystem,
			models.ActionNotifyFailed, fmt.Sprintf("sms to %s: %v", phone, err), ClientMeta{})
	}
}

func (s *NotificationService) email(to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.gateway.SendEmail(to, subject, body); err != nil {
		log.Printf("⚠️ Email dispatch failed for %s: %v", to, err)
		s.audit.Record(context.Background(), nil, models.ActorSystem,
			models.ActionNotifyFailed, fmt.Sprintf("email to %s: %v", to, err), ClientMeta{})
	}
}
