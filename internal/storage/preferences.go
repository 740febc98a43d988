package storage

import "fyne.io/fyne/v2"

// PreferencesStore keeps values in the fyne application preferences.
type PreferencesStore struct {
	preferences fyne.Preferences
}

// NewPreferencesStore wraps the preferences of a fyne app.
func NewPreferencesStore(preferences fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{preferences: preferences}
}

// Get returns ErrNotFound for missing or empty entries; fyne does not
// distinguish the two.
func (store *PreferencesStore) Get(key string) (string, error) {
	value := store.preferences.String(key)
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

func (store *PreferencesStore) Set(key, value string) error {
	store.preferences.SetString(key, value)
	return nil
}

func (store *PreferencesStore) Remove(key string) error {
	store.preferences.RemoveValue(key)
	return nil
}
