package notifier

import (
	"bytes"
	"html/template"
)

var sosEmailTemplate = template.Must(template.New("sos").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .alert-box { background: #fee; border-left: 4px solid #c00; padding: 15px; margin: 20px 0; }
    .button { display: inline-block; padding: 12px 24px; background: #c00; color: white; text-decoration: none; border-radius: 5px; margin: 10px 0; }
    .info { background: #f5f5f5; padding: 15px; border-radius: 5px; }
  </style>
</head>
<body>
  <div class="container">
    <h1 style="color: #c00;">EMERGENCY SOS ALERT</h1>
    <div class="alert-box">
      <h2>Immediate Attention Required</h2>
      <p><strong>{{.UserName}}</strong> has triggered an <strong>{{.AlertType}}</strong> SOS alert and may need immediate assistance.</p>
    </div>
    <div class="info">
      <h3>Location Details</h3>
      <p><strong>Address:</strong> {{.LocationText}}</p>
      <p><strong>Coordinates:</strong> {{.Latitude}}, {{.Longitude}}</p>
      {{if .UserPhone}}<p><strong>Contact:</strong> {{.UserPhone}}</p>{{end}}
      {{if .Message}}<p><strong>Message:</strong> {{.Message}}</p>{{end}}
    </div>
    <a href="{{.MapsURL}}" class="button">View Location on Google Maps</a>
    <p style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; color: #666;">
      <strong>What to do:</strong><br>
      1. Try to contact {{.UserName}} immediately<br>
      2. If you cannot reach them, call emergency services (911)<br>
      3. Share the location with first responders if needed
    </p>
    <p style="color: #999; font-size: 12px;">
      This alert was sent from Rapid Response Hub Emergency System.<br>
      Time: {{.SentAt}}
    </p>
  </div>
</body>
</html>`))

var incidentUpdateTemplate = template.Must(template.New("update").Parse(`<h2>Incident Status Update</h2>
<p><strong>Incident:</strong> {{.Title}}</p>
<p><strong>New Status:</strong> {{.Status}}</p>
<p>{{.Message}}</p>
<p style="color: #666; font-size: 12px;">Rapid Response Hub</p>`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #1e40af;">Welcome to Rapid Response Hub!</h1>
  <p>Hi {{.Name}},</p>
  <p>Thank you for joining Rapid Response Hub. You can now:</p>
  <ul>
    <li>Report emergencies and incidents in your area</li>
    <li>View real-time incident updates</li>
    <li>Set up emergency contacts for SOS alerts</li>
    <li>Help verify community-reported incidents</li>
  </ul>
  <p>Stay safe and help keep your community safe!</p>
  <p style="color: #666;">The Rapid Response Team</p>
</div>`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
