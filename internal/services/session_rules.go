package services

import (
	"fmt"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

var sessionTransitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionPending:  {models.SessionApproved, models.SessionRejected, models.SessionExpired},
	models.SessionApproved: {models.SessionUpcoming, models.SessionCanceled, models.SessionExpired},
	models.SessionUpcoming: {models.SessionOngoing, models.SessionCanceled, models.SessionExpired},
	models.SessionOngoing:  {models.SessionCompleted},
}

func canTransition(from, to models.SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type statusMessage struct {
	title        string
	menteeText   string
	mentorText   string
	notification string
}

var sessionStatusMessages = map[models.SessionStatus]statusMessage{
	models.SessionApproved: {
		title:        "Session approved",
		menteeText:   "Your mentor approved the session request.",
		mentorText:   "You approved the session request.",
		notification: "session_approved",
	},
	models.SessionUpcoming: {
		title:        "Session confirmed",
		menteeText:   "Payment received. Your session is confirmed.",
		mentorText:   "Payment received. The session is confirmed.",
		notification: "session_upcoming",
	},
	models.SessionOngoing: {
		title:        "Session started",
		menteeText:   "Your session is now in progress.",
		mentorText:   "The session is now in progress.",
		notification: "session_ongoing",
	},
	models.SessionCompleted: {
		title:        "Session completed",
		menteeText:   "Your session was completed. Thanks for learning with us.",
		mentorText:   "The session was completed and your earnings were released.",
		notification: "session_completed",
	},
	models.SessionCanceled: {
		title:        "Session canceled",
		menteeText:   "The session was canceled. Any eligible refund has been credited to your wallet.",
		mentorText:   "The session was canceled.",
		notification: "session_canceled",
	},
	models.SessionRejected: {
		title:        "Session rejected",
		menteeText:   "Your mentor declined the session request.",
		mentorText:   "You declined the session request.",
		notification: "session_rejected",
	},
	models.SessionExpired: {
		title:        "Session expired",
		menteeText:   "The session expired before it could take place.",
		mentorText:   "The session expired before it could take place.",
		notification: "session_expired",
	},
}

func sessionNotification(sessionID int64, status models.SessionStatus, recipientID int64, mentee bool) NotificationInput {
	msg, ok := sessionStatusMessages[status]
	if !ok {
		msg = statusMessage{
			title:        "Session updated",
			menteeText:   "Your session status changed.",
			mentorText:   "A session status changed.",
			notification: "session_updated",
		}
	}
	text := msg.mentorText
	if mentee {
		text = msg.menteeText
	}
	link := fmt.Sprintf("/sessions/%d", sessionID)
	return NotificationInput{
		RecipientID: recipientID,
		Title:       msg.title,
		Message:     text,
		Type:        msg.notification,
		Link:        &link,
	}
}
