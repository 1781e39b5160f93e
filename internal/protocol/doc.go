// Package protocol turns static-code SubGHz protocol keys into OOK pulse
// sequences. Supported protocols are a closed set resolved once from the
// descriptor's free-text protocol name; each has one pure encoding function.
package protocol
