package device

import (
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"edgeagent/pkg/logging"
)

// clients bundles the API clients the agent builds from one resolved
// credential source.
type clients struct {
	dynamic dynamic.Interface
	core    kubernetes.Interface
}

// resolveRESTConfig resolves Kubernetes credentials. The in-cluster service
// account is preferred; when the agent runs outside a pod it falls back to
// the local kubeconfig profile (an explicit path, $KUBECONFIG, or the
// standard ~/.kube/config chain). Failure of both sources is a
// ConfigurationError.
func resolveRESTConfig(kubeconfig string) (*rest.Config, error) {
	cfg, inClusterErr := rest.InClusterConfig()
	if inClusterErr == nil {
		logging.Debug("device", "Using in-cluster Kubernetes credentials")
		return cfg, nil
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, NewConfigurationError("no usable Kubernetes credentials (in-cluster and kubeconfig both failed)", err)
	}

	logging.Debug("device", "Using kubeconfig credentials from local profile")
	return cfg, nil
}

// newClients resolves credentials once and derives both API clients from the
// same rest.Config.
func newClients(kubeconfig string) (*clients, error) {
	cfg, err := resolveRESTConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	rest.AddUserAgent(cfg, "edgeagent")

	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, NewConfigurationError("failed to build dynamic client", err)
	}

	core, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, NewConfigurationError("failed to build core client", err)
	}

	return &clients{dynamic: dyn, core: core}, nil
}
