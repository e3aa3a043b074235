// Package logx is the process logger used by the hooklog CLI and its config
// watcher. Console output is human-readable, the optional file output is JSON
// rotated by lumberjack, and records at or above a minimum level can be
// mirrored to the chat webhook through hooklog.ZerologWriter.
package logx
