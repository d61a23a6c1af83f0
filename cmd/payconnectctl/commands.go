package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"payconnect/internal/crypto"
	"payconnect/internal/masking"
	"payconnect/internal/signing"
)

// newRootCmd creates the root command for payconnectctl
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "payconnectctl",
		Short:         "PayConnect operator tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newDigestCmd(), newCanonicalCmd(), newSignCmd(), newVerifyCmd(), newEncryptCmd(), newDecryptCmd())
	return rootCmd
}

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the Digest header value of a request body",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signing.Digest(body))
			return nil
		},
	}
	addBodyFlags(cmd)
	return cmd
}

func newCanonicalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canonical",
		Short: "Print the signing string of a request",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, params, err := requestParams(cmd)
			if err != nil {
				return err
			}
			c, err := scheme.CanonicalString(params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Text)
			return nil
		},
	}
	addRequestFlags(cmd)
	return cmd
}

func newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a request and print the headers to send",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, params, err := requestParams(cmd)
			if err != nil {
				return err
			}
			keyFile, _ := cmd.Flags().GetString("key-file")
			keyID, _ := cmd.Flags().GetString("key-id")
			pemText, err := os.ReadFile(keyFile)
			if err != nil {
				return fmt.Errorf("failed to read key file: %w", err)
			}

			sig, err := signing.NewSigner(scheme).Sign(signing.Credentials{
				KeyID:      keyID,
				PrivateKey: masking.NewSecret(string(pemText)),
			}, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", scheme.HostHeader, params.Host)
			fmt.Fprintf(out, "%s: %s\n", scheme.DateHeader, params.Date)
			if params.Digest != "" {
				fmt.Fprintf(out, "Digest: %s\n", params.Digest)
			}
			fmt.Fprintf(out, "Signature: %s\n", sig.Header)
			return nil
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().String("key-file", "", "PEM private key (PKCS#1 or PKCS#8)")
	cmd.Flags().String("key-id", "", "keyId advertised in the Signature header")
	_ = cmd.MarkFlagRequired("key-file")
	_ = cmd.MarkFlagRequired("key-id")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a Signature header against a public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, params, err := requestParams(cmd)
			if err != nil {
				return err
			}
			pubFile, _ := cmd.Flags().GetString("public-key-file")
			header, _ := cmd.Flags().GetString("signature")

			pemText, err := os.ReadFile(pubFile)
			if err != nil {
				return fmt.Errorf("failed to read public key: %w", err)
			}
			pub, err := signing.ParsePublicKey(string(pemText))
			if err != nil {
				return err
			}
			fields, err := signing.ParseSignatureHeader(header)
			if err != nil {
				return err
			}
			c, err := scheme.CanonicalString(params)
			if err != nil {
				return err
			}
			if fields["headers"] != c.HeaderList() {
				return fmt.Errorf("signed headers %q do not match %q", fields["headers"], c.HeaderList())
			}
			if err := signing.VerifyCanonical(pub, c.Text, fields["signature"]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature valid")
			return nil
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().String("public-key-file", "", "PEM public key")
	cmd.Flags().String("signature", "", "Signature header value")
	_ = cmd.MarkFlagRequired("public-key-file")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt <plaintext>",
		Short: "Encrypt a credential with the service AES key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := aesKey(cmd)
			if err != nil {
				return err
			}
			enc, err := crypto.EncryptString(key, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc)
			return nil
		},
	}
	addKeyFlag(cmd)
	return cmd
}

func newDecryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt <ciphertext>",
		Short: "Decrypt a stored credential with the service AES key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := aesKey(cmd)
			if err != nil {
				return err
			}
			plain, err := crypto.DecryptString(key, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain)
			return nil
		},
	}
	addKeyFlag(cmd)
	return cmd
}

func addBodyFlags(cmd *cobra.Command) {
	cmd.Flags().String("body", "", "request body")
	cmd.Flags().String("body-file", "", "read the request body from a file, - for stdin")
}

func addRequestFlags(cmd *cobra.Command) {
	addBodyFlags(cmd)
	cmd.Flags().String("method", "GET", "HTTP method")
	cmd.Flags().String("host", "", "originating host")
	cmd.Flags().String("path", "/", "request path including the query")
	cmd.Flags().String("date", "", "originating date (defaults to now)")
	cmd.Flags().String("content-type", "application/json", "content type of bodied requests")
	cmd.Flags().String("scheme", "nordea", "header scheme: nordea or generic")
	_ = cmd.MarkFlagRequired("host")
}

func addKeyFlag(cmd *cobra.Command) {
	cmd.Flags().String("aes-key", "", "base64 AES-256 key (defaults to AES_256_KEY_BASE64)")
}

func readBody(cmd *cobra.Command) ([]byte, error) {
	body, _ := cmd.Flags().GetString("body")
	file, _ := cmd.Flags().GetString("body-file")
	switch file {
	case "":
		return []byte(body), nil
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	default:
		return os.ReadFile(file)
	}
}

func requestParams(cmd *cobra.Command) (signing.Scheme, signing.Params, error) {
	f := cmd.Flags()
	schemeName, _ := f.GetString("scheme")
	var scheme signing.Scheme
	switch schemeName {
	case "nordea":
		scheme = signing.NordeaScheme
	case "generic":
		scheme = signing.GenericScheme
	default:
		return scheme, signing.Params{}, fmt.Errorf("unknown scheme %q", schemeName)
	}

	method, _ := f.GetString("method")
	host, _ := f.GetString("host")
	path, _ := f.GetString("path")
	date, _ := f.GetString("date")
	if date == "" {
		date = signing.HTTPDate(time.Now())
	}
	p := signing.Params{Method: strings.ToUpper(method), Host: host, Path: path, Date: date}
	if signing.MethodHasBody(p.Method) {
		body, err := readBody(cmd)
		if err != nil {
			return scheme, p, fmt.Errorf("failed to read body: %w", err)
		}
		p.ContentType, _ = f.GetString("content-type")
		p.Digest = signing.Digest(body)
	}
	return scheme, p, nil
}

// aesKey resolves the key from the flag, then the environment or .env.
func aesKey(cmd *cobra.Command) ([]byte, error) {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	_ = v.BindPFlag("AES_256_KEY_BASE64", cmd.Flags().Lookup("aes-key"))

	raw := v.GetString("AES_256_KEY_BASE64")
	if raw == "" {
		return nil, errors.New("no AES key: pass --aes-key or set AES_256_KEY_BASE64")
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(key) != 32 {
		return nil, errors.New("AES key must be 32 bytes, base64 encoded")
	}
	return key, nil
}
