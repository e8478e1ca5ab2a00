package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ParticipantRegistrations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "festival_registrations_total", Help: "Total participant registrations created"},
	)
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "festival_status_transitions_total", Help: "Participant status transitions by target state"},
		[]string{"status"},
	)
	BulkUploadRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "festival_bulk_upload_rows_total", Help: "Bulk upload rows by outcome"},
		[]string{"outcome"},
	)
	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "festival_emails_sent_total", Help: "Notification emails delivered"},
	)
	EmailsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "festival_emails_failed_total", Help: "Notification emails that failed to deliver"},
	)
)

func Register() {
	prometheus.MustRegister(ParticipantRegistrations, StatusTransitions, BulkUploadRows, EmailsSent, EmailsFailed)
}
