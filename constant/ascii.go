// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// AsciiArtLogo is the application's ASCII art banner shown on the root help screen.
const AsciiArtLogo = `
        _         _
  _   _| |_ _ __ | | __ _ _ __
 | | | | __| '_ \| |/ _` + "`" + ` | '_ \
 | |_| | |_| |_) | | (_| | | | |
  \__, |\__| .__/|_|\__,_|_| |_|
  |___/    |_|
`
