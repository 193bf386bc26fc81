package j2534

// ProtocolID selects the vehicle protocol of a channel (J2534-1 values).
const (
	J1850VPW     uint32 = 0x01
	J1850PWM     uint32 = 0x02
	ISO9141      uint32 = 0x03
	ISO14230     uint32 = 0x04
	CAN          uint32 = 0x05
	ISO15765     uint32 = 0x06
	SCI_A_ENGINE uint32 = 0x07
	SCI_A_TRANS  uint32 = 0x08
	SCI_B_ENGINE uint32 = 0x09
	SCI_B_TRANS  uint32 = 0x0A
)

// Ioctl ids.
const (
	GET_CONFIG                         uint32 = 0x01
	SET_CONFIG                         uint32 = 0x02
	READ_VBATT                         uint32 = 0x03
	FIVE_BAUD_INIT                     uint32 = 0x04
	FAST_INIT                          uint32 = 0x05
	CLEAR_TX_BUFFER                    uint32 = 0x07
	CLEAR_RX_BUFFER                    uint32 = 0x08
	CLEAR_PERIODIC_MSGS                uint32 = 0x09
	CLEAR_MSG_FILTERS                  uint32 = 0x0A
	CLEAR_FUNCT_MSG_LOOKUP_TABLE       uint32 = 0x0B
	ADD_TO_FUNCT_MSG_LOOKUP_TABLE      uint32 = 0x0C
	DELETE_FROM_FUNCT_MSG_LOOKUP_TABLE uint32 = 0x0D
	READ_PROG_VOLTAGE                  uint32 = 0x0E
)

// Connect flags and tx flags.
const (
	CAN_29BIT_ID        uint32 = 0x00000100
	ISO9141_NO_CHECKSUM uint32 = 0x00000200
	CAN_ID_BOTH         uint32 = 0x00000800
	ISO9141_K_LINE_ONLY uint32 = 0x00001000

	ISO15765_FRAME_PAD uint32 = 0x00000040
	WAIT_P3_MIN_ONLY   uint32 = 0x00000200
)

// StatusCode is the `long` returned by every PassThru entry point.
type StatusCode int32

const (
	STATUS_NOERROR            StatusCode = 0x00
	ERR_NOT_SUPPORTED         StatusCode = 0x01
	ERR_INVALID_CHANNEL_ID    StatusCode = 0x02
	ERR_INVALID_PROTOCOL_ID   StatusCode = 0x03
	ERR_NULL_PARAMETER        StatusCode = 0x04
	ERR_INVALID_IOCTL_VALUE   StatusCode = 0x05
	ERR_INVALID_FLAGS         StatusCode = 0x06
	ERR_FAILED                StatusCode = 0x07
	ERR_DEVICE_NOT_CONNECTED  StatusCode = 0x08
	ERR_TIMEOUT               StatusCode = 0x09
	ERR_INVALID_MSG           StatusCode = 0x0A
	ERR_INVALID_TIME_INTERVAL StatusCode = 0x0B
	ERR_EXCEEDED_LIMIT        StatusCode = 0x0C
	ERR_INVALID_MSG_ID        StatusCode = 0x0D
	ERR_DEVICE_IN_USE         StatusCode = 0x0E
	ERR_INVALID_IOCTL_ID      StatusCode = 0x0F
	ERR_BUFFER_EMPTY          StatusCode = 0x10
	ERR_BUFFER_FULL           StatusCode = 0x11
	ERR_BUFFER_OVERFLOW       StatusCode = 0x12
	ERR_PIN_INVALID           StatusCode = 0x13
	ERR_CHANNEL_IN_USE        StatusCode = 0x14
	ERR_MSG_PROTOCOL_ID       StatusCode = 0x15
	ERR_INVALID_FILTER_ID     StatusCode = 0x16
	ERR_NO_FLOW_CONTROL       StatusCode = 0x17
	ERR_NOT_UNIQUE            StatusCode = 0x18
	ERR_INVALID_BAUDRATE      StatusCode = 0x19
	ERR_INVALID_DEVICE_ID     StatusCode = 0x1A
)

var statusNames = map[StatusCode]string{
	STATUS_NOERROR:            "STATUS_NOERROR",
	ERR_NOT_SUPPORTED:         "ERR_NOT_SUPPORTED",
	ERR_INVALID_CHANNEL_ID:    "ERR_INVALID_CHANNEL_ID",
	ERR_INVALID_PROTOCOL_ID:   "ERR_INVALID_PROTOCOL_ID",
	ERR_NULL_PARAMETER:        "ERR_NULL_PARAMETER",
	ERR_INVALID_IOCTL_VALUE:   "ERR_INVALID_IOCTL_VALUE",
	ERR_INVALID_FLAGS:         "ERR_INVALID_FLAGS",
	ERR_FAILED:                "ERR_FAILED",
	ERR_DEVICE_NOT_CONNECTED:  "ERR_DEVICE_NOT_CONNECTED",
	ERR_TIMEOUT:               "ERR_TIMEOUT",
	ERR_INVALID_MSG:           "ERR_INVALID_MSG",
	ERR_INVALID_TIME_INTERVAL: "ERR_INVALID_TIME_INTERVAL",
	ERR_EXCEEDED_LIMIT:        "ERR_EXCEEDED_LIMIT",
	ERR_INVALID_MSG_ID:        "ERR_INVALID_MSG_ID",
	ERR_DEVICE_IN_USE:         "ERR_DEVICE_IN_USE",
	ERR_INVALID_IOCTL_ID:      "ERR_INVALID_IOCTL_ID",
	ERR_BUFFER_EMPTY:          "ERR_BUFFER_EMPTY",
	ERR_BUFFER_FULL:           "ERR_BUFFER_FULL",
	ERR_BUFFER_OVERFLOW:       "ERR_BUFFER_OVERFLOW",
	ERR_PIN_INVALID:           "ERR_PIN_INVALID",
	ERR_CHANNEL_IN_USE:        "ERR_CHANNEL_IN_USE",
	ERR_MSG_PROTOCOL_ID:       "ERR_MSG_PROTOCOL_ID",
	ERR_INVALID_FILTER_ID:     "ERR_INVALID_FILTER_ID",
	ERR_NO_FLOW_CONTROL:       "ERR_NO_FLOW_CONTROL",
	ERR_NOT_UNIQUE:            "ERR_NOT_UNIQUE",
	ERR_INVALID_BAUDRATE:      "ERR_INVALID_BAUDRATE",
	ERR_INVALID_DEVICE_ID:     "ERR_INVALID_DEVICE_ID",
}

// String returns the J2534-1 symbolic name, or "" for vendor codes.
func (c StatusCode) String() string {
	return statusNames[c]
}
