// Package listview provides a scrolling, keyboard driven list for Bubble Tea
// models. Only the rows inside the viewport are rendered.
package listview
