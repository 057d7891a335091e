/*
Package proxy exposes a single Pinecil over HTTP.

The proxy owns one BLE session and serialises requests to it, so any number of HTTP clients can
read live data and change settings without contending for the radio. Replies use the JSON
envelope

	{"response": ..., "error": "...", "error_description": "..."}

Endpoints:

	GET  /api/1/device                   device info
	GET  /api/1/live                     live data snapshot
	GET  /api/1/settings[?name=a&name=b] settings snapshot
	GET  /api/1/characteristics/{name}   single read, e.g. live.dc_voltage
	POST /api/1/settings/{name}          write {"value": ...}
	POST /api/1/settings/save            persist settings to flash
	POST /api/1/command/{command}        set_temperature, save_settings, reset_settings
	GET  /api/1/stream?interval=1s       websocket of live data frames
	GET  /api/1/firmware/latest          newest IronOS release
*/
package proxy
