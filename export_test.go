// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

var (
	PrePublishTestHook       = &prePublishTestHook
	MultiUnsubscribeTestHook = &multiUnsubscribeTestHook
)

// PendingCount returns how many events are queued, and not yet started, for
// the subscriber registered under the id.
func PendingCount(h *Hub, id string) int {
	h.mutex.Lock()
	sub, ok := h.subscribers[id]
	h.mutex.Unlock()
	if !ok {
		return 0
	}
	sub.mutex.Lock()
	defer sub.mutex.Unlock()
	return sub.pending.Len()
}
