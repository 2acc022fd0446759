package biblio

// Well-known storage keys. These five keys are the complete persisted-state
// surface of the client.
const (
	StorageKeyToken   = "token"
	StorageKeySubject = "user_id"
	StorageKeyRole    = "user_role"
	StorageKeyName    = "user_name"
	StorageKeyEmail   = "user_email"
)

var sessionKeys = []string{
	StorageKeyToken,
	StorageKeySubject,
	StorageKeyRole,
	StorageKeyName,
	StorageKeyEmail,
}

// SessionStore persists the credential and the fields derived from it.
// There is no in-memory caching layer: every accessor re-reads storage.
type SessionStore struct {
	storage Storage
}

func NewSessionStore(storage Storage) *SessionStore {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &SessionStore{storage: storage}
}

// Save persists the credential together with the subject and role decoded
// from it. Display name and email are optional profile extras; empty values
// are stored as empty strings.
func (s *SessionStore) Save(credential, subject, role, displayName, email string) error {
	pairs := map[string]string{
		StorageKeyToken:   credential,
		StorageKeySubject: subject,
		StorageKeyRole:    role,
		StorageKeyName:    displayName,
		StorageKeyEmail:   email,
	}
	for _, key := range sessionKeys {
		if err := s.storage.Set(key, pairs[key]); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every persisted session field. It is idempotent and
// succeeds when nothing was stored.
func (s *SessionStore) Clear() error {
	for _, key := range sessionKeys {
		if err := s.storage.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// IsAuthenticated reports whether a credential is present. This is an
// existence check only; the credential's validity is the server's problem.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the persisted credential, or empty when none is stored or
// storage is unreadable.
func (s *SessionStore) Token() string {
	return s.get(StorageKeyToken)
}

// Subject returns the persisted subject id.
func (s *SessionStore) Subject() string {
	return s.get(StorageKeySubject)
}

// Role returns the persisted role.
func (s *SessionStore) Role() UserRole {
	return UserRole(s.get(StorageKeyRole))
}

// DisplayName returns the persisted display name, when the login response
// carried a profile payload.
func (s *SessionStore) DisplayName() string {
	return s.get(StorageKeyName)
}

// Email returns the persisted email, when the login response carried a
// profile payload.
func (s *SessionStore) Email() string {
	return s.get(StorageKeyEmail)
}

// get degrades storage failures to the empty string: an unreadable session
// is treated as unauthenticated rather than raised to the caller.
func (s *SessionStore) get(key string) string {
	val, ok, err := s.storage.Get(key)
	if err != nil || !ok {
		return ""
	}
	return val
}
