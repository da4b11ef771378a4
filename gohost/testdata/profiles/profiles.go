package profiles

// RemoteResource marks properties of types that get a generated function.
type RemoteResource struct {
	Name string
}

// Profile is a user profile.
type Profile struct {
	// Nickname is shown to other users.
	// @RemoteResource
	Nickname string
	// @RemoteResource
	Age int
}

// Account is read from the accounts service.
type Account interface {
	// @RemoteResource("fetchAccount")
	Email() string
	Owner() Owner
	Close(force bool) error
}

// Settings are per-user settings.
type Settings struct {
	// @remoteresource.RemoteResource{Name: "fetchSettings"}
	Theme  string
	Labels []string
}

type Broken struct {
	// @RemoteResource{Name: }
	Value string
}

// @RemoteResource
func Refresh() {}

// @RemoteResource
var Default Profile
