// internal/app/system/status/status.go
package status

// Record statuses shared by users, organizations, and squads.
const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is a recognized record status.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
