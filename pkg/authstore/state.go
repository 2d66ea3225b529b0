package authstore

type Status string

const (
	StatusChecking         Status = "checking"
	StatusAuthenticated    Status = "authenticated"
	StatusNotAuthenticated Status = "not-authenticated"
)

// User is the signed-in user as reported by the backend. The zero value is the empty user.
type User struct {
	Name string
	Uid  string
}

// State is the client-side authentication state. An empty ErrorMessage means no message is set.
type State struct {
	Status       Status
	User         User
	ErrorMessage string
}

func InitialState() State {
	return State{Status: StatusChecking}
}

// Action is a reducer: it derives the next state from the current one without side effects.
type Action func(State) State

func OnChecking() Action {
	return func(State) State {
		return State{Status: StatusChecking}
	}
}

func OnLogin(u User) Action {
	return func(State) State {
		return State{Status: StatusAuthenticated, User: u}
	}
}

func OnLogout(errorMessage string) Action {
	return func(State) State {
		return State{Status: StatusNotAuthenticated, ErrorMessage: errorMessage}
	}
}

// ClearErrorMessage drops the message and keeps status and user.
func ClearErrorMessage() Action {
	return func(s State) State {
		s.ErrorMessage = ""
		return s
	}
}
