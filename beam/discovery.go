package beam

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// serviceType is the mDNS/DNS-SD service type external beam protocol
// listeners advertise themselves under.
const serviceType = "_phosphor-beam._tcp"

// AdvertiseExternalListener registers an mDNS service record for a
// listening external-protocol TCP endpoint so LAN tools can discover it
// without a hardcoded address. The returned cancel function withdraws the
// advertisement; callers should defer it alongside closing the listener.
func AdvertiseExternalListener(ctx context.Context, instanceName string, port int) (cancel func(), err error) {
	cfg := dnssd.Config{
		Name: instanceName,
		Type: serviceType,
		Port: port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("beam discovery: new service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("beam discovery: new responder: %w", err)
	}
	handle, err := responder.Add(service)
	if err != nil {
		return nil, fmt.Errorf("beam discovery: add service: %w", err)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	go func() {
		_ = responder.Respond(runCtx)
	}()

	return func() {
		responder.Remove(handle)
		cancelRun()
	}, nil
}
