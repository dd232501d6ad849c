// Package cmd provides common initialization for the service binaries.
package cmd

import (
	"log/slog"

	"github.com/lumahq/automation/pkg/actions/assignto"
	"github.com/lumahq/automation/pkg/actions/createtask"
	"github.com/lumahq/automation/pkg/actions/generatereport"
	"github.com/lumahq/automation/pkg/actions/schedulefollowup"
	"github.com/lumahq/automation/pkg/actions/sendmessage"
	"github.com/lumahq/automation/pkg/actions/sendnotification"
	"github.com/lumahq/automation/pkg/actions/slacknotify"
	"github.com/lumahq/automation/pkg/actions/suggestaction"
	"github.com/lumahq/automation/pkg/actions/updatefield"
	"github.com/lumahq/automation/pkg/actions/updatestatus"
	"github.com/lumahq/automation/pkg/actions/webhook"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/registry"
)

// Collaborators carries the external systems actions hand work to. Any
// field may be nil; the affected actions degrade per their contracts.
type Collaborators struct {
	Notifications protocol.PendingNotificationStore
	Mailer        protocol.Mailer
	Notifier      protocol.Notifier
}

// NewRegistry builds the action registry with every native action kind.
func NewRegistry(logger *slog.Logger, p persistence.Persistence, collab Collaborators) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(updatestatus.NewActionFactory(p.Entities()))
	reg.RegisterAction(updatefield.NewActionFactory(p.Entities()))
	reg.RegisterAction(assignto.NewActionFactory(p.Entities()))
	reg.RegisterAction(createtask.NewActionFactory(p.Tasks()))
	reg.RegisterAction(schedulefollowup.NewActionFactory(p.ScheduledActions()))
	reg.RegisterAction(sendmessage.NewActionFactory(collab.Mailer))
	reg.RegisterAction(sendnotification.NewActionFactory(collab.Notifier))
	reg.RegisterAction(slacknotify.NewActionFactory(collab.Notifications))
	reg.RegisterAction(suggestaction.NewActionFactory(collab.Notifications))
	reg.RegisterAction(webhook.NewActionFactory())
	reg.RegisterAction(generatereport.NewActionFactory())

	return reg
}
