package mailer

import "fmt"

// Template renders the subject and HTML body for a notification event.
type Template struct {
	Subject string
	HTML    string
}

// IssueCreated renders the email sent to administrators when a new issue arrives.
func IssueCreated(baseURL, title, issueID string) Template {
	return Template{
		Subject: "New Issue Submitted: " + title,
		HTML: fmt.Sprintf(`<h2>New Issue Submitted</h2>
<p>A new issue titled <strong>%s</strong> has been submitted and requires review.</p>
<p><a href="%s/issues/%s">View Issue</a></p>`, title, baseURL, issueID),
	}
}

// IssueAssigned renders the email sent to the assigned faculty member.
func IssueAssigned(baseURL, title, issueID string) Template {
	return Template{
		Subject: "Issue Assigned to You: " + title,
		HTML: fmt.Sprintf(`<h2>Issue Assigned</h2>
<p>The issue <strong>%s</strong> has been assigned to you.</p>
<p><a href="%s/issues/%s">View Issue</a></p>`, title, baseURL, issueID),
	}
}

// StatusUpdated renders the email sent when an issue's status changes.
func StatusUpdated(baseURL, title, issueID string) Template {
	return Template{
		Subject: "Issue Status Updated: " + title,
		HTML: fmt.Sprintf(`<h2>Status Updated</h2>
<p>The status of the issue <strong>%s</strong> has changed.</p>
<p><a href="%s/issues/%s">View Issue</a></p>`, title, baseURL, issueID),
	}
}

// IssueEscalated renders the email sent to administrators on escalation.
func IssueEscalated(baseURL, title, issueID string) Template {
	return Template{
		Subject: "Issue Escalated: " + title,
		HTML: fmt.Sprintf(`<h2>Issue Escalated</h2>
<p>The issue <strong>%s</strong> has been escalated and needs attention.</p>
<p><a href="%s/issues/%s">View Issue</a></p>`, title, baseURL, issueID),
	}
}

// CommentAdded renders the email sent when a new comment lands on an issue.
func CommentAdded(baseURL, title, issueID string) Template {
	return Template{
		Subject: "New Comment on Issue: " + title,
		HTML: fmt.Sprintf(`<h2>New Comment</h2>
<p>A new comment was added to the issue <strong>%s</strong>.</p>
<p><a href="%s/issues/%s">View Issue</a></p>`, title, baseURL, issueID),
	}
}
