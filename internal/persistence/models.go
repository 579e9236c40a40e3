package persistence

// Keys under which the session is kept in durable client storage.
const (
	TokenKey = "bookcafe_token"
	UserKey  = "bookcafe_user"
)

// StoredSession is the raw persisted pair: the bearer token and the
// serialized user record. Both are written or removed together.
type StoredSession struct {
	Token string
	User  string
}
