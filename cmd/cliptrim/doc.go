// Command cliptrim removes time ranges from a video and re-encodes the
// remainder into a single continuous output, optionally generating subtitles
// for the result.
package main
