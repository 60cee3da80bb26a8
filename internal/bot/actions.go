package bot

import (
	"strconv"
	"strings"
)

// Action tags. Tags ending in an underscore embed a numeric id; workflows
// build them with tagWithID and the router splits them with splitTag.
const (
	tagAssign    = "ASSIGN"
	tagStatus    = "STATUS"
	tagBroadcast = "BROADCAST"

	tagDeptPrefix = "DEPT_"
	tagDoerPrefix = "DOER_"

	tagUrgent   = "URGENT"
	tagDate     = "DATE"
	tagEdit     = "EDIT"
	tagSend     = "SEND"
	tagAddMore  = "ADD_MORE"
	tagAddDone  = "ADD_DONE"

	tagBroadcastSend   = "BROADCAST_SEND"
	tagBroadcastCancel = "BROADCAST_CANCEL"

	tagTasksPending   = "TASKS_PENDING"
	tagTasksCompleted = "TASKS_COMPLETED"
	tagTasksRevised   = "TASKS_REVISED"
	tagTasksCanceled  = "TASKS_CANCELED"

	tagStatusPending   = "STATUS_PENDING"
	tagStatusCompleted = "STATUS_COMPLETED"
	tagStatusRevised   = "STATUS_REVISED"
	tagStatusCanceled  = "STATUS_CANCELED"

	tagTaskDonePrefix   = "TASK_DONE_"
	tagTaskExtPrefix    = "TASK_EXT_"
	tagTaskCancelPrefix = "TASK_CANCEL_"

	tagExtApprovePrefix    = "EXT_APPROVE_"
	tagExtRejectPrefix     = "EXT_REJECT_"
	tagCancelApprovePrefix = "CANCEL_APPROVE_"
	tagCancelRejectPrefix  = "CANCEL_REJECT_"

	tagEACancelQueue = "EA_CANCEL_REQ"
	tagEAExtQueue    = "EA_EXT_REQ"

	tagRegSelf       = "REG_SELF"
	tagRegDecline    = "REG_DECLINE"
	tagRegKeep       = "REG_KEEP"
	tagRegChange     = "REG_CHANGE"
	tagRegDeptPrefix = "REG_DEPT_"

	tagRegApprovePrefix = "REG_APPROVE_"
	tagRegRejectPrefix  = "REG_REJECT_"
)

// tagWithID appends a numeric id to a tag prefix.
func tagWithID(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}

// splitTag returns the embedded id when tag starts with prefix.
func splitTag(tag, prefix string) (uint, bool) {
	if !strings.HasPrefix(tag, prefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(tag[len(prefix):], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// splitTagName returns the embedded name when tag starts with prefix.
// Used for department tags, which embed a name rather than an id.
func splitTagName(tag, prefix string) (string, bool) {
	if !strings.HasPrefix(tag, prefix) || len(tag) == len(prefix) {
		return "", false
	}
	return tag[len(prefix):], true
}
