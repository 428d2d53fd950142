package git

// statusLabels maps porcelain status codes to human-readable labels
var statusLabels = map[string]string{
	"A":  "Added",
	"M":  "Modified",
	"D":  "Deleted",
	"R":  "Renamed",
	"??": "Untracked",
	"AM": "Added",
	"MM": "Modified",
	"AD": "Added",
}

// StatusLabel returns a human-readable label for a git status code
func StatusLabel(code string) string {
	if label, ok := statusLabels[code]; ok {
		return label
	}
	// Combined codes fall back to their index status
	if len(code) >= 1 {
		if label, ok := statusLabels[code[:1]]; ok {
			return label
		}
	}
	return "Unknown"
}
