package model

// Recognized settings keys. Any other key is preserved as-is.
const (
	SettingCurrency      = "currency"
	SettingTheme         = "theme"
	SettingNotifications = "notifications"
)

// Settings is a flat, extensible key/value mapping. Updates merge into the
// existing mapping rather than replacing it.
type Settings map[string]any

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		SettingCurrency:      "R$",
		SettingTheme:         "light",
		SettingNotifications: true,
	}
}

// Merge returns a new Settings with patch applied over s.
func (s Settings) Merge(patch Settings) Settings {
	out := make(Settings, len(s)+len(patch))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Currency returns the display currency symbol, falling back to the default.
func (s Settings) Currency() string {
	if v, ok := s[SettingCurrency].(string); ok && v != "" {
		return v
	}
	return "R$"
}

// Theme returns "light" or "dark".
func (s Settings) Theme() string {
	if v, ok := s[SettingTheme].(string); ok && v == "dark" {
		return v
	}
	return "light"
}

// Notifications reports whether notifications are enabled (default true).
func (s Settings) Notifications() bool {
	if v, ok := s[SettingNotifications].(bool); ok {
		return v
	}
	return true
}
