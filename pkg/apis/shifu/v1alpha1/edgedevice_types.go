package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// EdgeDevicePhase describes the observed lifecycle phase of an EdgeDevice.
// +kubebuilder:validation:Enum=Pending;Running;Failed;Unknown
type EdgeDevicePhase string

const (
	// EdgeDevicePending means the device has been accepted by the system but
	// is not yet serving requests.
	EdgeDevicePending EdgeDevicePhase = "Pending"

	// EdgeDeviceRunning means the device is connected and healthy.
	EdgeDeviceRunning EdgeDevicePhase = "Running"

	// EdgeDeviceFailed means the device is unreachable or reported an error.
	EdgeDeviceFailed EdgeDevicePhase = "Failed"

	// EdgeDeviceUnknown means the device state could not be determined.
	EdgeDeviceUnknown EdgeDevicePhase = "Unknown"
)

// EdgeDeviceSpec defines the desired state of EdgeDevice
type EdgeDeviceSpec struct {
	// Sku is the stock keeping unit identifying the device model.
	// +optional
	Sku *string `json:"sku,omitempty"`

	// Connection describes the physical link to the device, for example
	// "Ethernet".
	// +optional
	Connection *string `json:"connection,omitempty"`

	// Address is the endpoint where the device can be reached. The format is
	// protocol specific, typically "host:port".
	// +optional
	Address *string `json:"address,omitempty"`

	// Protocol is the application protocol spoken by the device, for example
	// "HTTP" or "MQTT".
	// +optional
	Protocol *string `json:"protocol,omitempty"`
}

// EdgeDeviceStatus defines the observed state of EdgeDevice
type EdgeDeviceStatus struct {
	// EdgeDevicePhase is the phase last reported by the device agent.
	// +optional
	EdgeDevicePhase EdgeDevicePhase `json:"edgedevicephase,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=ed
// +kubebuilder:printcolumn:name="Sku",type="string",JSONPath=".spec.sku"
// +kubebuilder:printcolumn:name="Protocol",type="string",JSONPath=".spec.protocol"
// +kubebuilder:printcolumn:name="Address",type="string",JSONPath=".spec.address"
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.edgedevicephase"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// EdgeDevice is the Schema for the edgedevices API
type EdgeDevice struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   EdgeDeviceSpec   `json:"spec,omitempty"`
	Status EdgeDeviceStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// EdgeDeviceList contains a list of EdgeDevice
type EdgeDeviceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []EdgeDevice `json:"items"`
}

func init() {
	SchemeBuilder.Register(&EdgeDevice{}, &EdgeDeviceList{})
}
