package config

import "time"

type SessionConfig interface {
	GetShortTokenTTL() time.Duration
	GetRememberTokenTTL() time.Duration
	GetBrowserCookieName() string
	GetBrowserCookieMaxAge() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetShortTokenTTL() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}

func (Session) GetRememberTokenTTL() time.Duration {
	return 30 * 24 * time.Hour // 30 days
}

func (Session) GetBrowserCookieName() string {
	return "portal_browser_id"
}

func (Session) GetBrowserCookieMaxAge() time.Duration {
	return 365 * 24 * time.Hour
}
