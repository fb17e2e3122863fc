package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

var _ = Describe("Config getters", func() {
	Context("with an empty config", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{}
		})

		It("should default the source to the Cursor API", func() {
			src := cfg.GetSource()
			Expect(src.GetType()).To(Equal(config.SourceCursor))
			Expect(src.GetCursor().GetEndpoint()).To(Equal(config.DefaultCursorEndpoint))
			Expect(src.GetCursor().GetPlatform()).To(Equal("linux-x64"))
			Expect(src.GetCursor().GetReleaseTrack()).To(Equal("latest"))
			Expect(src.GetCursor().GetUserAgent()).To(Equal("Cursor-Version-Checker"))
		})

		It("should default the install layout", func() {
			inst := cfg.GetInstall()
			Expect(inst.GetPath()).To(Equal("/opt/cursor"))
			Expect(inst.GetSymlink()).To(Equal("/usr/local/bin/cursor"))
			Expect(inst.GetLauncher()).To(Equal("AppRun"))
			Expect(inst.GetDesktopFile()).To(Equal("cursor.desktop"))
			Expect(inst.GetSandboxHelper()).To(Equal("usr/share/cursor/chrome-sandbox"))
			Expect(inst.GetPrivilege()).To(Equal(config.PrivilegeAuto))
			Expect(inst.IsBackupEnabled()).To(BeTrue())
		})

		It("should default network bounds", func() {
			net := cfg.GetNetwork()
			Expect(net.GetTimeout()).To(Equal(15 * time.Second))
			Expect(net.GetDownloadTimeout()).To(BeZero())
			Expect(net.GetProgressInterval()).To(Equal(200 * time.Millisecond))
		})

		It("should enable color", func() {
			Expect(cfg.GetOutput().IsColorEnabled()).To(BeTrue())
		})
	})

	Context("with nil sections", func() {
		It("should not panic on nil receivers", func() {
			var inst *config.InstallConfig

			var gh *config.GitHubSourceConfig

			var net *config.NetworkConfig

			Expect(inst.GetPath()).To(Equal(config.DefaultInstallPath))
			Expect(inst.IsBackupEnabled()).To(BeTrue())
			Expect(gh.GetAssetPattern()).To(Equal("*.AppImage"))
			Expect(gh.GetChecksumPattern()).To(Equal("{*.sha256,SHA256SUMS}"))
			Expect(net.GetTimeout()).To(Equal(config.DefaultTimeout))
		})
	})

	Context("with explicit values", func() {
		It("should return them", func() {
			backup := false
			color := false

			cfg := &config.Config{
				Install: &config.InstallConfig{
					Path:      "/home/dev/Applications/cursor",
					Backup:    &backup,
					Privilege: config.PrivilegeDirect,
				},
				Network: &config.NetworkConfig{
					Timeout:          config.Duration(5 * time.Second),
					DownloadTimeout:  config.Duration(10 * time.Minute),
					ProgressInterval: config.Duration(time.Second),
				},
				Output: &config.OutputConfig{Color: &color},
			}

			Expect(cfg.GetInstall().GetPath()).To(Equal("/home/dev/Applications/cursor"))
			Expect(cfg.GetInstall().IsBackupEnabled()).To(BeFalse())
			Expect(cfg.GetInstall().GetPrivilege()).To(Equal(config.PrivilegeDirect))
			Expect(cfg.GetNetwork().GetTimeout()).To(Equal(5 * time.Second))
			Expect(cfg.GetNetwork().GetDownloadTimeout()).To(Equal(10 * time.Minute))
			Expect(cfg.GetNetwork().GetProgressInterval()).To(Equal(time.Second))
			Expect(cfg.GetOutput().IsColorEnabled()).To(BeFalse())
		})
	})
})
