package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

const (
	// ProfilePrefix is prepended to the storage key of every saved profile.
	ProfilePrefix = "saved_"
	// ProfileNameKey holds the label of the profile last saved or loaded.
	ProfileNameKey = "profileName"
)

var (
	ErrInvalidLabel    = errors.New("invalid profile label")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidImport   = errors.New("provided data is not a JSON object")
	ErrUnknownKey      = errors.New("unknown setting key")
)

// Node binds the reticle settings to a Store: one stored key per setting, plus
// saved profiles under ProfilePrefix.
type Node struct {
	store *Store
}

func NewNode(store *Store) *Node { return &Node{store: store} }

func (n *Node) Store() *Store { return n.store }

// Current returns the snapshot of the stored settings on top of Defaults.
func (n *Node) Current() Settings {
	values := make(map[string]any, len(fields))
	for _, key := range Keys() {
		var value any
		ok, err := n.store.Get(key, &value)
		if err != nil {
			n.store.Logger.Warn().Err(err).Str("key", key).Msg("Ignoring undecodable setting")
			continue
		}
		if ok {
			values[key] = value
		}
	}
	s := Defaults()
	if invalid := s.Merge(values); len(invalid) > 0 {
		n.store.Logger.Warn().Strs("keys", invalid).Msg("Ignoring settings with invalid values")
	}
	return s
}

// Set stores one setting value.
func (n *Node) Set(key string, value any) error {
	if !IsKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return n.store.Set(key, value)
}

// Apply stores every recognised setting in values in one write; other keys are ignored.
func (n *Node) Apply(values map[string]any) error {
	return n.store.SetMany(settingValues(values))
}

func settingValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		if IsKey(key) {
			out[key] = value
		}
	}
	return out
}

// RestoreDefaults overwrites every setting with its factory value.
func (n *Node) RestoreDefaults() error {
	return n.Apply(Defaults().Values())
}

// OnChange calls fn once per write that touched setting keys or the active profile
// name, with those keys sorted. Profile contents and other keys are filtered out.
func (n *Node) OnChange(fn func(keys []string)) (remove func()) {
	return n.store.AddBatchListener(func(changes []Change) {
		var keys []string
		for _, c := range changes {
			if IsKey(c.Key) || c.Key == ProfileNameKey {
				keys = append(keys, c.Key)
			}
		}
		if len(keys) > 0 {
			fn(keys)
		}
	})
}

// SaveProfile stores the current settings under label.
func (n *Node) SaveProfile(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrInvalidLabel
	}
	return n.store.SetMany(map[string]any{
		ProfilePrefix + label: n.Current().Values(),
		ProfileNameKey:        label,
	})
}

// LoadProfile applies the settings saved under label.
func (n *Node) LoadProfile(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrInvalidLabel
	}
	var values map[string]any
	ok, err := n.store.Get(ProfilePrefix+label, &values)
	if err != nil {
		return err
	}
	if !ok || values == nil {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, label)
	}
	batch := settingValues(values)
	batch[ProfileNameKey] = label
	return n.store.SetMany(batch)
}

// RemoveProfile deletes the profile saved under label.
func (n *Node) RemoveProfile(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrInvalidLabel
	}
	if _, ok := n.store.Raw(ProfilePrefix + label); !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, label)
	}
	if err := n.store.Remove(ProfilePrefix + label); err != nil {
		return err
	}
	if n.ActiveProfile() == label {
		return n.store.Remove(ProfileNameKey)
	}
	return nil
}

// Profiles lists saved profile labels, sorted.
func (n *Node) Profiles() []string {
	keys := n.store.Keys(ProfilePrefix)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, strings.TrimPrefix(key, ProfilePrefix))
	}
	return out
}

// ActiveProfile returns the label last saved or loaded, or "".
func (n *Node) ActiveProfile() string {
	var label string
	if _, err := n.store.Get(ProfileNameKey, &label); err != nil {
		return ""
	}
	return label
}

// Export encodes the current settings as a JSON object for sharing.
func (n *Node) Export() ([]byte, error) {
	return sonic.Marshal(n.Current().Values())
}

// Import applies settings from a JSON object produced by Export.
func (n *Node) Import(data []byte) error {
	var decoded any
	if err := sonic.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	values, ok := decoded.(map[string]any)
	if !ok {
		return ErrInvalidImport
	}
	return n.Apply(values)
}
