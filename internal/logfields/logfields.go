package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyJobID      = "job_id"
	KeyJobStatus  = "job_status"
	KeyWebsiteID  = "website_id"
	KeyUserID     = "user_id"
	KeyStage      = "stage"
	KeyProgress   = "progress"
	KeyHost       = "host"
	KeyRelease    = "release_id"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func JobStatus(s string) slog.Attr    { return slog.String(KeyJobStatus, s) }
func WebsiteID(id string) slog.Attr   { return slog.String(KeyWebsiteID, id) }
func UserID(id string) slog.Attr      { return slog.String(KeyUserID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Progress(p int) slog.Attr        { return slog.Int(KeyProgress, p) }
func Host(h string) slog.Attr         { return slog.String(KeyHost, h) }
func Release(id string) slog.Attr     { return slog.String(KeyRelease, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr     { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr     { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
