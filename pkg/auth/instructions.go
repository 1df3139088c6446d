package auth

import (
	"fmt"
	"io"
	"strings"
)

// PrintCookieGuide explains how to copy the session cookies from a browser
func PrintCookieGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TWITTER SESSION COOKIES")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Tweet pages are fetched anonymously unless a session is configured.")
	fmt.Fprintln(w, "To use your own session:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Log in to https://twitter.com in your browser")
	fmt.Fprintln(w, "  2. Open Developer Tools (F12) and go to Application > Cookies")
	fmt.Fprintln(w, "     (Firefox: Storage > Cookies)")
	fmt.Fprintln(w, "  3. Select https://twitter.com and copy the values of:")
	fmt.Fprintln(w, "       auth_token")
	fmt.Fprintln(w, "       ct0")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The cookies are stored in your system keychain when available,")
	fmt.Fprintln(w, "otherwise in an encrypted file. They can also be supplied with")
	fmt.Fprintf(w, "%s and %s.\n", EnvAuthToken, EnvCT0)
	fmt.Fprintln(w, rule)
}
