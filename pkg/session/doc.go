/*
Package session hosts live wizard sessions.

A Manager keeps one wizard.Controller per session in memory, serializes access to it
with a per-session lock (optionally backed by a distributed lock) and persists the
session record to a SessionStore after every call that changed it. Sessions missing
from memory, e.g. after a restart or on another replica, are rehydrated from the store.
*/
package session
