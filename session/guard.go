package session

// View is what a protected page shows for a given session state.
type View int

const (
	ViewSpinner View = iota
	ViewLogin
	ViewContent
)

func (v View) String() string {
	switch v {
	case ViewSpinner:
		return "spinner"
	case ViewLogin:
		return "login"
	default:
		return "content"
	}
}

// Guard maps LOADING to the spinner, UNAUTHENTICATED to the login form and
// AUTHENTICATED to the wrapped content.
func Guard(st State) View {
	switch {
	case st.Loading:
		return ViewSpinner
	case !st.Authenticated:
		return ViewLogin
	default:
		return ViewContent
	}
}
