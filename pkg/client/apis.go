package client

import (
	"encoding/json"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"

	"github.com/battcal/battcal/pkg/calibration"
	"github.com/battcal/battcal/pkg/config"
)

func (c *Client) GetStatus() (*calibration.Status, error) {
	var st calibration.Status
	if err := c.getJSON("/status", &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration status")
	}
	return &st, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	var conf config.RawFileConfig
	if err := c.getJSON("/config", &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}
	return &conf, nil
}

func (c *Client) GetBatteryInfo() (*battery.Battery, error) {
	var bat battery.Battery
	if err := c.getJSON("/battery-info", &bat); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery info")
	}
	return &bat, nil
}

func (c *Client) GetVersion() (string, error) {
	var v string
	if err := c.getJSON("/version", &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return v, nil
}

func (c *Client) getJSON(path string, v any) error {
	ret, err := c.Get(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(ret), v); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal %s", path)
	}
	return nil
}
