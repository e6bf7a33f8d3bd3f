package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "thanima"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// Submissions counts pipeline outcomes: success, invalid, upload_failed,
	// storage_failed, duplicate, internal.
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "submissions_total", Help: "Application submissions by result."},
		[]string{"result"},
	)
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "upload_bytes_total", Help: "Bytes of résumé files written to the blob store."},
	)
	Exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "exports_total", Help: "Admin exports by kind (csv, files) and result."},
		[]string{"kind", "result"},
	)
	ExportSkippedFiles = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "export_skipped_files_total", Help: "Attachments left out of an archive because they could not be fetched."},
	)
	AdminLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "admin_logins_total", Help: "Admin login attempts by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Submissions)
	reg.MustRegister(UploadBytes)
	reg.MustRegister(Exports)
	reg.MustRegister(ExportSkippedFiles)
	reg.MustRegister(AdminLogins)
}
