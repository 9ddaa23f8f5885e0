package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyAcquisitionID = "acquisition_id"
	KeyLocator       = "locator"
	KeyLocatorKind   = "locator_kind"
	KeyRepo          = "repository"
	KeyBranch        = "branch"
	KeyPath          = "path"
	KeyStage         = "stage"
	KeyFiles         = "files"
	KeyBytes         = "bytes"
	KeySkipReason    = "skip_reason"
	KeyDurationMS    = "duration_ms"
	KeyMethod        = "method"
	KeyStatus        = "status"
	KeyUserAgent     = "user_agent"
	KeyRemoteAddr    = "remote_addr"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func AcquisitionID(id string) slog.Attr  { return slog.String(KeyAcquisitionID, id) }
func Locator(l string) slog.Attr         { return slog.String(KeyLocator, l) }
func LocatorKind(k string) slog.Attr     { return slog.String(KeyLocatorKind, k) }
func Repository(r string) slog.Attr      { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr          { return slog.String(KeyBranch, b) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Files(n int) slog.Attr              { return slog.Int(KeyFiles, n) }
func Bytes(n int) slog.Attr              { return slog.Int(KeyBytes, n) }
func SkipReason(r string) slog.Attr      { return slog.String(KeySkipReason, r) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr          { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr      { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr   { return slog.String(KeyRemoteAddr, addr) }
func Error(err error) slog.Attr {
	if err == nil { return slog.String(KeyError, "") }
	return slog.String(KeyError, err.Error())
}
