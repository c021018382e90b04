package cmd

const DESCRIPTION = `
agentwire keeps an authenticated session with a social service alive
across runs, posts through it, relays chat to a local agent server and
fetches media for the agent to use.

Settings are read from the environment and from a .env file in the
working directory (USERNAME, PASSWORD, AGENTWIRE_*).
`

const (
	PostDescription = `The post command restores the saved session (or logs in
with USERNAME and PASSWORD), asks for one message and sends it.
Exactly one attempt is made.

Example:
        agentwire post

`
	LoginDescription = `The login command establishes a session and saves its
cookies to cookies.json without posting anything. Use --force
to discard the saved session and log in again.

Example:
        agentwire login --force

`
	LogoutDescription = `The logout command deletes the saved session files
(cookies.json and cookies.raw.json).

Example:
        agentwire logout

`
	ImportDescription = `The import command copies a login from a browser into
the saved session. Firefox and Chrome cookie databases and
Netscape cookies.txt files are supported.

Example:
        agentwire session import ~/.mozilla/firefox/x.default/cookies.sqlite

`
	ChatDescription = `The chat command sends every line you type to the local
agent server and prints its replies. Type 'exit' to quit.

Example:
        agentwire chat --characters characters/coffee.character.json

`
	FetchDescription = `The fetch command downloads images into the download
directory as meme_1.jpg, meme_2.jpg, ... When no URL is given a
built-in meme set is fetched.

Example:
        agentwire fetch https://i.imgflip.com/30b1gx.jpg

`
)
