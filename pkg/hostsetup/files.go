package hostsetup

const (
	ProgramName = "s3duplicity-backup"

	LogrotatePath = "/etc/logrotate.d/s3duplicity-backup"
	RsyslogPath   = "/etc/rsyslog.d/22-s3duplicity-backup.conf"
)

const logrotateContent = `/var/log/s3duplicity-backup.log {
    daily
    rotate 7
    missingok
    notifempty
    dateext
    create 0600 root root
    copytruncate
}
`

const rsyslogContent = `# Log s3duplicity-backup generated log messages to file
:programname, isequal, "s3duplicity-backup" /var/log/s3duplicity-backup.log

# comment out the following line to allow S3DUPLICITY-BACKUP messages through.
# Doing so means you'll also get S3DUPLICITY-BACKUP messages in /var/log/syslog
& ~

`

// File is a host side file with fixed content and the command that makes
// the host pick it up.
type File struct {
	Name     string
	Path     string
	Content  string
	Activate []string
}

func LogrotateFile() File {
	return File{
		Name:     "logrotate",
		Path:     LogrotatePath,
		Content:  logrotateContent,
		Activate: []string{"logrotate", LogrotatePath},
	}
}

func RsyslogFile() File {
	return File{
		Name:     "rsyslog",
		Path:     RsyslogPath,
		Content:  rsyslogContent,
		Activate: []string{"service", "rsyslog", "restart"},
	}
}

// DefaultFiles lists the side files in the order they are prepared.
func DefaultFiles() []File {
	return []File{RsyslogFile(), LogrotateFile()}
}
