// Package bot contiene el motor de diálogo: sesiones por usuario, flujos
// paso a paso y el dispatcher que enruta cada mensaje entrante.
package bot

// Flow identifica la conversación en curso de un usuario.
type Flow int

const (
	FlowIdle Flow = iota
	FlowAddPart
	FlowEditPart
	FlowDeletePart
	FlowIncoming
	FlowOutgoing
	FlowSearch
	FlowUsers
	FlowBackup
)

// String para trazas.
func (f Flow) String() string {
	switch f {
	case FlowIdle:
		return "idle"
	case FlowAddPart:
		return "add_part"
	case FlowEditPart:
		return "edit_part"
	case FlowDeletePart:
		return "delete_part"
	case FlowIncoming:
		return "incoming"
	case FlowOutgoing:
		return "outgoing"
	case FlowSearch:
		return "search"
	case FlowUsers:
		return "users"
	case FlowBackup:
		return "backup"
	}
	return "unknown"
}

// Step es la posición dentro de un flujo. Los valores solo tienen sentido
// dentro del flujo al que pertenecen.
type Step int

const (
	StepNone Step = iota

	// alta de repuesto
	StepAddName
	StepAddCode
	StepAddQuantity
	StepAddUnit
	StepAddMinStock

	// edición
	StepEditCode
	StepEditField
	StepEditValue

	// borrado
	StepDeleteCode
	StepDeleteConfirm

	// entrada / salida (ambos flujos usan el mismo paso)
	StepMovementInput

	// búsqueda
	StepSearchTerm

	// gestión de usuarios
	StepUsersMenu
	StepUsersAddID
	StepUsersRemovePick

	// copias de seguridad
	StepBackupMenu
)
