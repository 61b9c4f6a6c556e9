// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/metrics"
	"github.com/javajoker/bizdir-backend/internal/models"
)

// Notifier delivers owner and admin emails about listing lifecycle events.
type Notifier interface {
	SendWelcome(user *models.User, profile *models.Profile) error
	SendBusinessSubmitted(owner *models.User, business *models.Business) error
	SendBusinessStatusChanged(owner *models.User, business *models.Business) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type NotificationService struct {
	config   *config.Config
	metrics  *metrics.Metrics
	sendMail sendMailFunc
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		config:   config,
		metrics:  m,
		sendMail: smtp.SendMail,
	}
}

func (s *NotificationService) SendWelcome(user *models.User, profile *models.Profile) error {
	name := user.Email
	if profile != nil && profile.FirstName != "" {
		name = profile.FirstName
	}

	return s.send("welcome", []string{user.Email}, map[string]interface{}{
		"Name":         name,
		"Business":     user.UserType == models.UserTypeBusiness,
		"DashboardURL": s.dashboardURL(user.UserType),
	})
}

// SendBusinessSubmitted tells the admins a listing is waiting for review.
func (s *NotificationService) SendBusinessSubmitted(owner *models.User, business *models.Business) error {
	return s.send("business_submitted", s.config.Admin.Emails, map[string]interface{}{
		"BusinessName": business.Name,
		"City":         business.City,
		"State":        business.State,
		"OwnerEmail":   owner.Email,
		"AdminURL":     s.config.Frontend.BaseURL + "/admin",
	})
}

func (s *NotificationService) SendBusinessStatusChanged(owner *models.User, business *models.Business) error {
	templateType := "business_" + string(business.Status)
	return s.send(templateType, []string{owner.Email}, map[string]interface{}{
		"BusinessName": business.Name,
		"Status":       string(business.Status),
		"ListingURL":   fmt.Sprintf("%s/business/%s", s.config.Frontend.BaseURL, business.Slug),
		"DashboardURL": s.dashboardURL(models.UserTypeBusiness),
	})
}

func (s *NotificationService) dashboardURL(t models.UserType) string {
	if t == models.UserTypeBusiness {
		return s.config.Frontend.BaseURL + "/business-dashboard"
	}
	return s.config.Frontend.BaseURL + "/dashboard"
}

func (s *NotificationService) send(templateType string, to []string, data map[string]interface{}) error {
	tmpl := s.getEmailTemplate(templateType)

	subject, err := s.renderTemplate(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	if err := s.sendEmail(to, subject, body); err != nil {
		s.metrics.RecordNotification(templateType, "error")
		return err
	}
	s.metrics.RecordNotification(templateType, "sent")
	return nil
}

// Helper methods
func (s *NotificationService) sendEmail(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      strings.Join(to, ","),
			"subject": subject,
		}).Info("Email not sent: SMTP is not configured")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, strings.Join(to, ", "), subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	if err := s.sendMail(addr, auth, s.config.Email.FromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to the Local Business Directory",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	{{if .Business}}<p>Your business has been submitted and will appear in the directory once an administrator approves it.</p>
	{{else}}<p>Start discovering trusted businesses near you.</p>{{end}}
	<a href="{{.DashboardURL}}">Go to your dashboard</a>
</body>
</html>`,
		},
		"business_submitted": {
			Subject: "New business awaiting review: {{.BusinessName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>{{.OwnerEmail}} registered "{{.BusinessName}}" in {{.City}}, {{.State}}.</p>
	<a href="{{.AdminURL}}">Review pending businesses</a>
</body>
</html>`,
		},
		"business_approved": {
			Subject: "{{.BusinessName}} is now live",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Your listing has been approved!</h2>
	<p>"{{.BusinessName}}" is now visible to customers.</p>
	<a href="{{.ListingURL}}">View your listing</a>
</body>
</html>`,
		},
		"business_rejected": {
			Subject: "Update on your listing {{.BusinessName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>"{{.BusinessName}}" was not approved for the directory.</p>
	<p>Please review your details or contact support.</p>
	<a href="{{.DashboardURL}}">Open your dashboard</a>
</body>
</html>`,
		},
		"business_pending": {
			Subject: "{{.BusinessName}} is under review",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>"{{.BusinessName}}" has been moved back to review and is hidden from the directory for now.</p>
	<a href="{{.DashboardURL}}">Open your dashboard</a>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.BusinessName}}: {{.Status}}</p>",
	}
}
