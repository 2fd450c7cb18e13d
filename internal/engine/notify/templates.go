package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var layout = template.Must(template.New("notice").Parse(`<div style="font-family: Arial, sans-serif; padding: 24px;">
	<h2 style="margin-top: 0;">{{.Heading}}</h2>
	<table style="border-collapse: collapse;">
		<tbody>
		{{- range .Rows}}
			<tr>
				<td style="padding: 4px 12px 4px 0; color: #666666;">{{.Label}}</td>
				<td style="padding: 4px 0;"><strong>{{.Value}}</strong></td>
			</tr>
		{{- end}}
		</tbody>
	</table>
</div>
`))

type row struct {
	Label string
	Value string
}

type notice struct {
	Heading string
	Rows    []row
}

func render(subject string, n notice) Message {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, n); err != nil {
		// The template is static; an execution error can only come from the writer.
		return Message{Subject: subject, HTML: template.HTMLEscapeString(n.Heading)}
	}
	return Message{Subject: subject, HTML: buf.String()}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func TrialStarted(email, userID, customerID, subscriptionID string) Message {
	return render(fmt.Sprintf("New trial started: %s", orUnknown(email)), notice{
		Heading: "A new free trial has started",
		Rows: []row{
			{Label: "Email", Value: orUnknown(email)},
			{Label: "User ID", Value: orUnknown(userID)},
			{Label: "Stripe customer", Value: customerID},
			{Label: "Stripe subscription", Value: orUnknown(subscriptionID)},
		},
	})
}

func TrialConverted(firstName, customerID, plan string) Message {
	return render(fmt.Sprintf("Trial converted to paid: %s", orUnknown(firstName)), notice{
		Heading: "A trial converted to a paid subscription",
		Rows: []row{
			{Label: "Name", Value: orUnknown(firstName)},
			{Label: "Stripe customer", Value: customerID},
			{Label: "Plan", Value: orUnknown(plan)},
		},
	})
}

func PaymentFailed(customerID string) Message {
	return render(fmt.Sprintf("Payment failed: %s", customerID), notice{
		Heading: "A subscription payment failed",
		Rows: []row{
			{Label: "Stripe customer", Value: customerID},
			{Label: "Status", Value: "past_due"},
		},
	})
}

func SubscriptionCanceled(firstName, customerID string) Message {
	return render(fmt.Sprintf("Subscription canceled: %s", orUnknown(firstName)), notice{
		Heading: "A subscription was canceled",
		Rows: []row{
			{Label: "Name", Value: orUnknown(firstName)},
			{Label: "Stripe customer", Value: customerID},
		},
	})
}
