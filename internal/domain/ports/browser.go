package ports

// BrowserLauncher opens the preview page
type BrowserLauncher interface {
	// Launch opens url unless noOpen is set, in which case it only logs it
	Launch(url string, noOpen bool) error
	// Detect returns the browser command Launch would run
	Detect() (string, error)
}
