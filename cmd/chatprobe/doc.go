// Package main is a command-line probe for the chat completion client.
//
// It reads API_BASE_URL, API_KEY and API_MODEL from the environment and
// sends one user message:
//
//	chatprobe -prompt "Summarize this page"
//	chatprobe -stream -prompt "Write a haiku"
//	chatprobe -test
//	chatprobe -mock -prompt "offline"
package main
