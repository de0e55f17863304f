package constants

import "time"

const (
	APP_NAME     = "My Blog"
	SERVICE_NAME = "blog"

	DEFAULT_DEMO_LATENCY = 500 * time.Millisecond
	CLIENT_TIMEOUT       = 10 * time.Second

	// key-value store keys, shared by the API client, the demo API and the site
	KEY_AUTH_TOKEN     = "authToken"
	KEY_CURRENT_USER   = "currentUser"
	KEY_THEME          = "theme"
	KEY_DEMO_POSTS     = "demo_posts"
	KEY_DEMO_LOGGED_IN = "demo_logged_in"
	KEY_DEMO_USER      = "demo_user"

	THEME_LIGHT = "light"
	THEME_DARK  = "dark"
)
