package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

const reminderSubject = "Stay Active on Codeforces!"

var reminderTemplate = template.Must(template.New("reminder").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #667eea; padding: 30px; border-radius: 10px; text-align: center; color: white;">
    <h1 style="margin: 0; font-size: 28px;">Keep Your Coding Streak Alive!</h1>
  </div>
  <div style="background: #f8f9fa; padding: 30px; border-radius: 10px; margin-top: 20px;">
    <p style="font-size: 18px;">Hi <strong>{{.Name}}</strong>,</p>
    <p style="font-size: 16px; line-height: 1.6; color: #333;">
      We noticed you haven't submitted any problems on Codeforces lately.
      Don't let your coding skills get rusty!
    </p>
    <div style="background: white; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #667eea;">
      <h3 style="margin-top: 0; color: #667eea;">Your Stats:</h3>
      <p><strong>Current Rating:</strong> {{.CurrentRating}}</p>
      <p><strong>Max Rating:</strong> {{.MaxRating}}</p>
      <p><strong>Codeforces Handle:</strong> {{.CodeforcesHandle}}</p>
    </div>
    <div style="text-align: center; margin: 30px 0;">
      <a href="https://codeforces.com/profile/{{.CodeforcesHandle}}"
         style="background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px;">
        Visit Your Profile
      </a>
    </div>
    <p style="font-size: 16px; line-height: 1.6; color: #333;">
      Consistent practice is the key to improvement. Even one problem a day makes a difference.
    </p>
  </div>
  <div style="text-align: center; margin-top: 30px; color: #666; font-size: 14px;">
    <p>Happy Coding!</p>
    <p>This is an automated reminder. You can disable these emails by contacting your administrator.</p>
  </div>
</div>
`))

// RenderReminder renders the inactivity reminder body for a student.
func RenderReminder(student database.Student) (string, error) {
	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, student); err != nil {
		return "", fmt.Errorf("%w, cannot render reminder for %s, %w", spm_errors.ErrInternal, student.Email, err)
	}
	return buf.String(), nil
}

// SendReminder mails the inactivity reminder to a student and reports
// whether it was delivered.
func (e *EmailService) SendReminder(ctx context.Context, student database.Student) error {
	body, err := RenderReminder(student)
	if err != nil {
		e.logger.Error(err)
		return err
	}

	return e.NewMail(ctx, EmailRequest{
		To:       []string{student.Email},
		Subject:  reminderSubject,
		Body:     body,
		BodyType: KeyEmailBodyHTML,
		Purpose:  PurposeInactivityReminder,
	})
}
