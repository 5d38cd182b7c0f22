// Package v1alpha1 contains API Schema definitions for the shifu v1alpha1 API group.
//
// This package defines the EdgeDevice Custom Resource Definition used by the
// edge agent. An EdgeDevice represents a single physical or virtual device that
// is managed through the control plane; its status carries the device phase the
// agent continuously reconciles.
//
// # API Group: shifu.edgenesis.io/v1alpha1
//
// ## EdgeDevice
//
// EdgeDevice describes how a device is reached (address, protocol) and what it
// is (sku, connection), and records the observed device phase.
//
// Example:
//
//	apiVersion: shifu.edgenesis.io/v1alpha1
//	kind: EdgeDevice
//	metadata:
//	  name: thermometer-01
//	  namespace: devices
//	spec:
//	  sku: "TAS-WS-R0020"
//	  connection: Ethernet
//	  address: "192.168.15.48:9090"
//	  protocol: HTTP
//	status:
//	  edgedevicephase: Running
//
// +kubebuilder:object:generate=true
// +groupName=shifu.edgenesis.io
package v1alpha1
