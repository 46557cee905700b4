package playbook

// The built-in playbooks mirror common early-stage attack chains. Operators
// can override or extend them with YAML files in the playbook directory.
var builtins = []*Playbook{
	{
		Name:        "credential-access",
		Description: "Basic credential access and dumping playbook simulating an attacker attempting to harvest credentials",
		Steps: []Step{
			{
				Technique:   "T1003",
				TestNumbers: []int{1},
				Description: "OS Credential Dumping - Dumps cached credentials",
			},
			{
				Technique:   "T1552.001",
				TestNumbers: []int{1},
				Description: "Credentials In Files - Access credential files",
			},
			{
				Technique:   "T1555.003",
				TestNumbers: []int{1},
				Description: "Credentials from Web Browsers - Extract credentials from browser stores",
			},
		},
		BlueTeamGuidance: `# Blue Team Guidance - Credential Access Playbook

## Log Sources to Monitor
- Windows Event Log (Security): 4663, 4656, 4624, 4625
- Sysmon: Process creation (Event ID 1), File creation (Event ID 11)
- PowerShell Script Block Logging (Event ID 4104)
- Process and command line auditing

## Key Detection Opportunities
- Monitor for processes accessing credential files (mimikatz, procdump)
- Look for suspicious process creation events creating lsass.exe dumps
- Monitor registry operations related to credential storage
- Watch for unexpected DPAPI usage
- Monitor access to browser data files and directories
- Detect suspicious command-line parameters for built-in utilities like reg.exe

## Basic Response Steps
1. Isolate the affected endpoint immediately
2. Investigate the authentication events following the credential access
3. Force password resets for any potentially compromised accounts
4. Look for persistence mechanisms that may have been established
5. Check for lateral movement using potentially stolen credentials
`,
	},
	{
		Name:        "discovery",
		Description: "Host and network discovery playbook simulating an attacker's reconnaissance phase",
		Steps: []Step{
			{
				Technique:   "T1087.001",
				TestNumbers: []int{1},
				Description: "Account Discovery - Local Accounts",
			},
			{
				Technique:   "T1016",
				TestNumbers: []int{1},
				Description: "System Network Configuration Discovery",
			},
			{
				Technique:   "T1018",
				Description: "Remote System Discovery",
			},
			{
				Technique:   "T1082",
				Description: "System Information Discovery",
			},
		},
		BlueTeamGuidance: `# Blue Team Guidance - Discovery Playbook

## Log Sources to Monitor
- Windows Event Log (Security and System)
- PowerShell Module Logging (Event ID 4103)
- Command-line process auditing (Event ID 4688 with command line)
- Sysmon Process Creation (Event ID 1)
- Network connection logs and NetFlow/zeek data

## Key Detection Opportunities
- Multiple discovery commands executed in short succession
- Use of built-in Windows utilities for system enumeration (net.exe, ipconfig, systeminfo)
- PowerShell cmdlets for system and network discovery
- Host enumeration via Active Directory queries
- Suspicious registry queries related to system configuration

## Basic Response Steps
1. Evaluate context - is this activity expected from the user/system?
2. Look for other suspicious activities that might follow reconnaissance
3. Correlate discovery activities with other potential attack indicators
4. If malicious, investigate how the attacker gained initial access
5. Monitor for subsequent lateral movement or privilege escalation attempts
`,
	},
	{
		Name:        "persistence",
		Description: "Persistence mechanism playbook simulating an attacker establishing staying power in the environment",
		Steps: []Step{
			{
				Technique:   "T1547.001",
				Description: "Boot or Logon Autostart Execution - Registry Run Keys",
			},
			{
				Technique:   "T1053.005",
				Description: "Scheduled Task/Job: Scheduled Task",
			},
			{
				Technique:   "T1136.001",
				Description: "Create Account: Local Account",
			},
		},
		BlueTeamGuidance: `# Blue Team Guidance - Persistence Playbook

## Log Sources to Monitor
- Windows Event Log (Security): 4624, 4720, 4732
- System Event Log: 106, 4698, 4699, 4700, 4701 (Task Scheduler)
- Sysmon: Registry modifications (Event ID 12 & 13)
- Process Creation (Event ID 4688 with command line or Sysmon Event ID 1)
- PowerShell logs if used for persistence implementation

## Key Detection Opportunities
- New scheduled tasks created with odd names or suspicious command lines
- Registry modifications to Run/RunOnce keys
- New user account creation outside normal provisioning processes
- Unusual service installations or modifications
- New startup folder items

## Basic Response Steps
1. Identify and analyze the persistence mechanism
2. Identify how it was established (credential access? privileged account?)
3. Verify what commands or payloads execute when the persistence triggers
4. Remove the persistence mechanism after proper investigation
5. Hunt for additional persistence mechanisms (adversaries rarely use just one)
6. Reset credentials for any accounts that were potentially compromised
7. Analyze any payloads/binaries used by the persistence mechanism
`,
	},
}
