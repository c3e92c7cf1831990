/*Package notify delivers change notifications for storage operations.

The data-access layer emits one event per successful create, update or
delete. Deployments that configure an AMQP broker get the events published
to a topic exchange; everything else is a no-op.
*/
package notify

// Operation represents a modifying storage operation.
type Operation string

// all notified storage operations
const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Notifier is an interface to receive storage change notifications.
type Notifier interface {
	Notify(resource string, operation Operation, payload []byte)
}
