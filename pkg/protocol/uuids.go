package protocol

import "fmt"

// GATT services exposed by IronOS on the Pinecil V2.
const (
	BulkServiceUUID     = "9eae1000-9d0d-48c5-aa55-33e27f9bc533"
	LiveServiceUUID     = "d85ef000-168e-4a71-aa55-33e27f9bc533"
	SettingsServiceUUID = "f6d80000-5a10-4eba-aa55-33e27f9bc533"
)

func bulkUUID(id uint16) string {
	return fmt.Sprintf("9eae%04x-9d0d-48c5-aa55-33e27f9bc533", id)
}

func liveUUID(id uint16) string {
	return fmt.Sprintf("d85e%04x-168e-4a71-aa55-33e27f9bc533", id)
}

func settingUUID(id uint16) string {
	return fmt.Sprintf("f6d7%04x-5a10-4eba-aa55-33e27f9bc533", id)
}
