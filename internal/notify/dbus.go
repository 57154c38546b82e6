//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	appName       = "eddy"
	notifications = "org.freedesktop.Notifications"
)

// busNotifier talks to the freedesktop notification daemon.
type busNotifier struct {
	obj dbus.BusObject
}

// New returns a Notifier on the session bus. Without a session bus every
// notification is dropped.
func New() Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		return discard{}
	}
	return &busNotifier{obj: conn.Object(notifications, "/org/freedesktop/Notifications")}
}

func (n Notification) hints() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(appName),
	}
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	var id uint32
	err := b.obj.Call(notifications+".Notify", 0,
		appName, n.ReplacesID, n.Icon, n.Title, n.Body,
		[]string{}, n.hints(), n.Timeout,
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Close(id uint32) error {
	return b.obj.Call(notifications+".CloseNotification", 0, id).Err
}
