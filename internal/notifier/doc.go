// Package notifier publishes a day's assembly schedule outside the chatbot.
//
// Telegram is the only remote channel; DryRunNotifier prints the message instead
// of posting it.
package notifier
