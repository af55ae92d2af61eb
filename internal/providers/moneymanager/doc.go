// Package moneymanager implements the Money Manager tools.
//
// Each tool validates its arguments before any request is made, calls the
// upstream through the client package and shapes the decoded reply. Tool
// modules mirror the app's screens: transactions, summary, assets, cards,
// transfers, dashboard, backup and session.
package moneymanager
