package control

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// Field names of the status message.
const (
	fieldStartHour     = "start_hour"
	fieldEndHour       = "end_hour"
	fieldChimeType     = "chime_type"
	fieldAutoStart     = "autostart"
	fieldLastFiredHour = "last_fired_hour"
	fieldHasFired      = "has_fired"
)

// StatusToStruct encodes a status for the wire.
func StatusToStruct(current chime.Status) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldStartHour:     current.Window.StartHour,
		fieldEndHour:       current.Window.EndHour,
		fieldChimeType:     current.Style.String(),
		fieldAutoStart:     current.AutoStart,
		fieldLastFiredHour: current.LastFiredHour,
		fieldHasFired:      current.HasFired,
	})
}

// StatusFromStruct decodes a status. Missing or malformed fields fall back to defaults.
func StatusFromStruct(message *structpb.Struct) chime.Status {
	fields := message.GetFields()

	window := chime.Window{
		StartHour: int(fields[fieldStartHour].GetNumberValue()),
		EndHour:   int(fields[fieldEndHour].GetNumberValue()),
	}

	if _, ok := fields[fieldStartHour]; !ok || window.Validate() != nil {
		window = chime.DefaultWindow()
	}

	style, _ := chime.ParseStyle(fields[fieldChimeType].GetStringValue())

	return chime.Status{
		Window:        window,
		Style:         style,
		AutoStart:     fields[fieldAutoStart].GetBoolValue(),
		LastFiredHour: int(fields[fieldLastFiredHour].GetNumberValue()),
		HasFired:      fields[fieldHasFired].GetBoolValue(),
	}
}
