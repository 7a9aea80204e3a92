// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders one screen per workflow stage:
//  1. Auth: choose client or user authorization; in user mode, open the URL and paste (or capture) the redirect
//  2. Source: toggle playlist/recommendations, type the input and target minutes
//  3. Processing: spinner, progress bar and the track currently being analysed
//  4. Results: the mix as a list, with export, save, and restart
//
// The [Model] owns a [workflow.Machine] but never renders its session directly. Intents run as commands off the
// update loop while the model is busy; every session change comes back as an immutable snapshot over a single
// channel, followed by the intent's completion, so the view always reflects the latest stage in order.
//
// Keyboard navigation uses bubbles/key bindings with contextual help displayed via charmbracelet/bubbles/help.
// ctrl+c quits from anywhere; q quits from screens without a text field.
package ui
