// Package cookies imports an existing browser login into the session
// store. It reads Firefox (moz_cookies) and Chrome (cookies, unencrypted
// values only) SQLite databases and Netscape cookies.txt files.
//
// Cookie values are never logged; only names, domains and counts are.
package cookies
