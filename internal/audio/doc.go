// Package audio plays 16-bit PCM through the system audio device (oto)
// and provides a silent MockPlayer plus small PCM helpers.
package audio
