package usecase

import "time"

// SetNotificationClock replaces time.Now for testing
func SetNotificationClock(uc *NotificationUseCase, now func() time.Time) {
	uc.now = now
}

// SetTodoClock replaces time.Now for testing
func SetTodoClock(uc *TodoUseCase, now func() time.Time) {
	uc.now = now
}

// SetNotifyClock replaces time.Now for testing
func SetNotifyClock(uc *NotifyUseCase, now func() time.Time) {
	uc.now = now
}

const DigestHeader = digestHeader
